package storage

import (
	"strings"

	"wallet-credit-score/internal/domain"
)

// ValidateRun checks that run is well formed and every score belongs to it
// with a unique, non-empty wallet. IDs must not contain NUL.
// Returns ErrInvalidInput otherwise.
func ValidateRun(run *domain.ScoreRun, scores []*domain.WalletScoreRecord) error {
	if run == nil || run.RunID == "" || strings.IndexByte(run.RunID, 0) >= 0 {
		return ErrInvalidInput
	}

	seen := make(map[string]struct{}, len(scores))
	for _, s := range scores {
		// NUL separates key parts in the embedded store
		if s == nil || s.Wallet == "" || s.RunID != run.RunID || strings.IndexByte(s.Wallet, 0) >= 0 {
			return ErrInvalidInput
		}
		if s.CreditScore < domain.MinCreditScore || s.CreditScore > domain.MaxCreditScore {
			return ErrInvalidInput
		}
		if _, dup := seen[s.Wallet]; dup {
			return ErrInvalidInput
		}
		seen[s.Wallet] = struct{}{}
	}
	return nil
}

// RunIsNewer reports whether a should be preferred over b as the latest run.
func RunIsNewer(a, b *domain.ScoreRun) bool {
	if !a.AsOf.Equal(b.AsOf) {
		return a.AsOf.After(b.AsOf)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.RunID > b.RunID
}
