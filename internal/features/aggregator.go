// Package features turns transaction entries into per-wallet feature vectors.
package features

import (
	"math"
	"sort"
	"time"

	"wallet-credit-score/internal/domain"
)

const secondsPerDay = 86400

// accumulator is the mutable running state of one wallet during aggregation.
type accumulator struct {
	txCount      int
	volumeUSD    float64
	liquidations int
	repays       int
	borrows      int
	deposits     int
	firstSeen    time.Time
}

func (a *accumulator) add(e *domain.TransactionEntry) {
	a.txCount++
	// saturate instead of overflowing to +Inf
	a.volumeUSD = math.Min(a.volumeUSD+e.AmountUSD, math.MaxFloat64)

	switch e.Action {
	case domain.ActionLiquidationCall:
		a.liquidations++
	case domain.ActionRepay:
		a.repays++
	case domain.ActionBorrow:
		a.borrows++
	case domain.ActionDeposit:
		a.deposits++
	}

	if a.txCount == 1 || e.Timestamp.Before(a.firstSeen) {
		a.firstSeen = e.Timestamp
	}
}

// Aggregate groups entries by wallet in a single pass and returns one feature
// vector per distinct wallet. WalletAgeDays is measured against asOf, so the
// same input scored on different days yields different ages.
func Aggregate(entries []*domain.TransactionEntry, asOf time.Time) map[string]*domain.WalletFeatures {
	accs := make(map[string]*accumulator)

	for _, e := range entries {
		if e == nil {
			continue
		}
		acc, ok := accs[e.Wallet]
		if !ok {
			acc = &accumulator{}
			accs[e.Wallet] = acc
		}
		acc.add(e)
	}

	result := make(map[string]*domain.WalletFeatures, len(accs))
	for wallet, acc := range accs {
		result[wallet] = &domain.WalletFeatures{
			Wallet:           wallet,
			TransactionCount: acc.txCount,
			TotalVolumeUSD:   acc.volumeUSD,
			LiquidationCount: acc.liquidations,
			RepayCount:       acc.repays,
			BorrowCount:      acc.borrows,
			DepositCount:     acc.deposits,
			WalletAgeDays:    AgeDays(acc.firstSeen, asOf),
			FirstSeen:        acc.firstSeen,
		}
	}

	return result
}

// AgeDays returns the whole days elapsed from first to asOf, floored.
// A first timestamp after asOf gives a negative age. Seconds are used instead
// of time.Duration, which saturates at about 292 years.
func AgeDays(first, asOf time.Time) int {
	secs := asOf.Unix() - first.Unix()
	if asOf.Nanosecond() < first.Nanosecond() {
		secs--
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 && secs < 0 {
		days--
	}
	return int(days)
}

// Sorted returns the feature vectors ordered by wallet ASC for deterministic output.
func Sorted(table map[string]*domain.WalletFeatures) []*domain.WalletFeatures {
	rows := make([]*domain.WalletFeatures, 0, len(table))
	for _, f := range table {
		rows = append(rows, f)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Wallet < rows[j].Wallet
	})
	return rows
}
