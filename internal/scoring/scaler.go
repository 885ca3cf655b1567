package scoring

import (
	"math"

	"wallet-credit-score/internal/domain"
)

// Scaled column names.
const (
	ColumnTransactionCount = "transactionCount"
	ColumnTotalVolumeUSD   = "totalVolumeUSD"
	ColumnLiquidationCount = "liquidationCount"
	ColumnRepayCount       = "repayCount"
	ColumnWalletAgeDays    = "walletAgeDays"
)

// ScaledColumns lists the feature columns min-max scaled across the population.
// DepositCount and BorrowCount are deliberately absent: they only feed the raw
// deposit/borrow ratio.
var ScaledColumns = []string{
	ColumnTransactionCount,
	ColumnTotalVolumeUSD,
	ColumnLiquidationCount,
	ColumnRepayCount,
	ColumnWalletAgeDays,
}

// MinMax maps values onto [0,1] as (v - min) / (max - min).
// When max == min, including a single value, every output is 0 and
// degenerate is true. NaN and ±Inf inputs are left out of the range and
// scale to 0, so one unusable value cannot affect the rest of the column.
// Empty input returns an empty slice.
func MinMax(values []float64) (scaled []float64, degenerate bool) {
	scaled = make([]float64, len(values))
	if len(values) == 0 {
		return scaled, false
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo >= hi {
		return scaled, true
	}

	// halve both sides when max - min overflows float64
	half := 1.0
	if math.IsInf(hi-lo, 0) {
		half = 0.5
	}
	width := hi*half - lo*half

	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		s := (v*half - lo*half) / width
		// guard against rounding just outside [0,1]
		if s < 0 {
			s = 0
		} else if s > 1 {
			s = 1
		}
		scaled[i] = s
	}
	return scaled, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ScalePopulation scales ScaledColumns across rows. Output order matches rows.
func ScalePopulation(rows []*domain.WalletFeatures) ([]*domain.ScaledFeatures, []DegenerateRangeWarning) {
	out := make([]*domain.ScaledFeatures, len(rows))
	for i, f := range rows {
		out[i] = &domain.ScaledFeatures{Wallet: f.Wallet}
	}

	var warnings []DegenerateRangeWarning
	for _, col := range ScaledColumns {
		values := make([]float64, len(rows))
		for i, f := range rows {
			values[i] = column(f, col)
		}

		scaled, degenerate := MinMax(values)
		if degenerate && len(rows) > 0 {
			warnings = append(warnings, DegenerateRangeWarning{Stage: StageScaler, Column: col})
		}
		for i, s := range scaled {
			setColumn(out[i], col, s)
		}
	}

	return out, warnings
}

func column(f *domain.WalletFeatures, col string) float64 {
	switch col {
	case ColumnTransactionCount:
		return float64(f.TransactionCount)
	case ColumnTotalVolumeUSD:
		return f.TotalVolumeUSD
	case ColumnLiquidationCount:
		return float64(f.LiquidationCount)
	case ColumnRepayCount:
		return float64(f.RepayCount)
	case ColumnWalletAgeDays:
		return float64(f.WalletAgeDays)
	default:
		return 0
	}
}

func setColumn(s *domain.ScaledFeatures, col string, v float64) {
	switch col {
	case ColumnTransactionCount:
		s.TransactionCount = v
	case ColumnTotalVolumeUSD:
		s.TotalVolumeUSD = v
	case ColumnLiquidationCount:
		s.LiquidationCount = v
	case ColumnRepayCount:
		s.RepayCount = v
	case ColumnWalletAgeDays:
		s.WalletAgeDays = v
	}
}
