package scoring

import (
	"fmt"

	"wallet-credit-score/internal/domain"
)

// Outcome is the result of scoring a population.
type Outcome struct {
	Scaled   []*domain.ScaledFeatures
	Scores   []*domain.ScoredWallet // same order as the input rows
	Warnings []DegenerateRangeWarning
}

// Score runs scaler, combiner and rescaler over rows with weights w.
// It returns ErrEmptyPopulation when rows is empty.
func Score(rows []*domain.WalletFeatures, w Weights) (*Outcome, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyPopulation
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}

	scaled, warnings := ScalePopulation(rows)

	raw := make(map[string]float64, len(rows))
	for i, f := range rows {
		raw[f.Wallet] = w.RawScore(f, scaled[i])
	}

	final, warn := Rescale(raw)
	if warn != nil {
		warnings = append(warnings, *warn)
	}

	scores := make([]*domain.ScoredWallet, len(rows))
	for i, f := range rows {
		scores[i] = &domain.ScoredWallet{
			Wallet:      f.Wallet,
			CreditScore: final[f.Wallet],
			RawScore:    raw[f.Wallet],
		}
	}

	return &Outcome{Scaled: scaled, Scores: scores, Warnings: warnings}, nil
}
