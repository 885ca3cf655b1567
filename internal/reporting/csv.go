package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wallet-credit-score/internal/domain"
)

// RenderScoresCSV renders one userWallet,credit_score row per wallet.
// Wallets with commas, quotes or line breaks are quoted.
func RenderScoresCSV(scores []*domain.WalletScoreRecord) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{"userWallet", "credit_score"})
	for _, s := range scores {
		w.Write([]string{s.Wallet, strconv.Itoa(s.CreditScore)})
	}

	// strings.Builder never fails a write
	w.Flush()
	return sb.String()
}

// RenderFeaturesCSV renders the full feature table with raw and final scores.
func RenderFeaturesCSV(rows []*domain.WalletFeatureRecord) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	w.Write([]string{
		"userWallet", "transaction_count", "total_volume_usd", "liquidation_count", "repay_count",
		"borrow_count", "deposit_count", "wallet_age_days", "first_seen",
		"raw_score", "credit_score",
	})

	// Rows
	for _, r := range rows {
		w.Write([]string{
			r.Wallet,
			strconv.Itoa(r.TransactionCount),
			fmt.Sprintf("%.6f", r.TotalVolumeUSD),
			strconv.Itoa(r.LiquidationCount),
			strconv.Itoa(r.RepayCount),
			strconv.Itoa(r.BorrowCount),
			strconv.Itoa(r.DepositCount),
			strconv.Itoa(r.WalletAgeDays),
			time.Unix(r.FirstSeenUnix, 0).UTC().Format(time.RFC3339),
			fmt.Sprintf("%.6f", r.RawScore),
			strconv.Itoa(r.CreditScore),
		})
	}

	w.Flush()
	return sb.String()
}
