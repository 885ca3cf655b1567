package scoring

import (
	"math"

	"wallet-credit-score/internal/domain"
)

// Rescale maps raw scores onto integers in [0,1000] by population min-max
// followed by truncation. When every raw score is equal all wallets get 0 and
// a warning is returned.
func Rescale(raw map[string]float64) (map[string]int, *DegenerateRangeWarning) {
	wallets := make([]string, 0, len(raw))
	values := make([]float64, 0, len(raw))
	for w, v := range raw {
		wallets = append(wallets, w)
		values = append(values, v)
	}

	scaled, degenerate := MinMax(values)

	scores := make(map[string]int, len(raw))
	for i, w := range wallets {
		scores[w] = TruncateScore(scaled[i] * domain.MaxCreditScore)
	}

	if degenerate {
		return scores, &DegenerateRangeWarning{Stage: StageRescaler, Column: ColumnRawScore}
	}
	return scores, nil
}

// TruncateScore truncates v toward zero and clamps it to the credit score range.
func TruncateScore(v float64) int {
	if math.IsNaN(v) || v <= domain.MinCreditScore {
		return domain.MinCreditScore
	}
	if v >= domain.MaxCreditScore {
		return domain.MaxCreditScore
	}
	return int(math.Trunc(v))
}
