package scoring

import (
	"fmt"
	"math"

	"wallet-credit-score/internal/domain"
)

// Weights is the linear combination applied to one wallet's features.
type Weights struct {
	TransactionCount   float64 // scaled, reward activity
	TotalVolumeUSD     float64 // scaled, reward volume
	LiquidationCount   float64 // scaled, penalize liquidations
	RepayCount         float64 // scaled, reward repayments
	DepositBorrowRatio float64 // raw deposits / (borrows + 1)
	WalletAgeDays      float64 // scaled, reward longevity
}

// DefaultWeights is the production weight table.
var DefaultWeights = Weights{
	TransactionCount:   0.15,
	TotalVolumeUSD:     0.25,
	LiquidationCount:   -0.40,
	RepayCount:         0.30,
	DepositBorrowRatio: 0.20,
	WalletAgeDays:      0.10,
}

// Validate checks that every weight is finite and has the expected sign:
// the liquidation weight must not be positive, all others must not be negative.
func (w Weights) Validate() error {
	terms := []struct {
		name     string
		value    float64
		positive bool
	}{
		{ColumnTransactionCount, w.TransactionCount, true},
		{ColumnTotalVolumeUSD, w.TotalVolumeUSD, true},
		{ColumnLiquidationCount, w.LiquidationCount, false},
		{ColumnRepayCount, w.RepayCount, true},
		{"depositBorrowRatio", w.DepositBorrowRatio, true},
		{ColumnWalletAgeDays, w.WalletAgeDays, true},
	}

	for _, t := range terms {
		if math.IsNaN(t.value) || math.IsInf(t.value, 0) {
			return fmt.Errorf("weight %s: not finite", t.name)
		}
		if t.positive && t.value < 0 {
			return fmt.Errorf("weight %s: must be >= 0, got %v", t.name, t.value)
		}
		if !t.positive && t.value > 0 {
			return fmt.Errorf("weight %s: must be <= 0, got %v", t.name, t.value)
		}
	}
	return nil
}

// RawScore combines one wallet's raw features f and scaled features s.
func (w Weights) RawScore(f *domain.WalletFeatures, s *domain.ScaledFeatures) float64 {
	return w.TransactionCount*s.TransactionCount +
		w.TotalVolumeUSD*s.TotalVolumeUSD +
		w.LiquidationCount*s.LiquidationCount +
		w.RepayCount*s.RepayCount +
		w.DepositBorrowRatio*DepositBorrowRatio(f.DepositCount, f.BorrowCount) +
		w.WalletAgeDays*s.WalletAgeDays
}

// DepositBorrowRatio returns deposits / (borrows + 1).
// It is unbounded above and is not population-scaled, so a wallet with many
// deposits and no borrows can dominate the other terms.
func DepositBorrowRatio(deposits, borrows int) float64 {
	return float64(deposits) / float64(borrows+1)
}
