package reporting

import (
	"sort"

	"wallet-credit-score/internal/domain"
)

// BinWidth is the width of one score distribution bin.
const BinWidth = 100

// Histogram counts scores in bins [0,100), [100,200), ..., [900,1000].
// The last bin includes 1000. Out-of-range scores are ignored.
func Histogram(scores []int) []HistogramBin {
	n := (domain.MaxCreditScore - domain.MinCreditScore) / BinWidth
	bins := make([]HistogramBin, n)
	for i := range bins {
		bins[i] = HistogramBin{
			Lower: domain.MinCreditScore + i*BinWidth,
			Upper: domain.MinCreditScore + (i+1)*BinWidth,
		}
	}

	for _, s := range scores {
		if s < domain.MinCreditScore || s > domain.MaxCreditScore {
			continue
		}
		i := (s - domain.MinCreditScore) / BinWidth
		if i == n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}

// Summarize computes descriptive statistics over scores.
func Summarize(scores []int) ScoreSummary {
	if len(scores) == 0 {
		return ScoreSummary{}
	}

	sorted := append([]int(nil), scores...)
	sort.Ints(sorted)

	sum := 0
	for _, s := range sorted {
		sum += s
	}

	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return ScoreSummary{
		Wallets: len(sorted),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Mean:    float64(sum) / float64(len(sorted)),
		Median:  median,
	}
}
