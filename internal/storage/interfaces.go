package storage

import (
	"context"

	"wallet-credit-score/internal/domain"
)

// ScoreStore provides access to score_runs and wallet_scores storage.
// Runs are append-only: a run and its scores are written once, together.
type ScoreStore interface {
	// InsertRun adds a run and all of its wallet scores atomically.
	// Returns ErrDuplicateKey if run_id exists, ErrInvalidInput if a score
	// does not belong to the run or a wallet repeats.
	InsertRun(ctx context.Context, run *domain.ScoreRun, scores []*domain.WalletScoreRecord) error

	// GetRun retrieves run metadata. Returns ErrNotFound if not exists.
	GetRun(ctx context.Context, runID string) (*domain.ScoreRun, error)

	// GetLatestRun returns the run with the greatest as_of (ties broken by
	// created_at, then run_id). Returns ErrNotFound if no run is stored.
	GetLatestRun(ctx context.Context) (*domain.ScoreRun, error)

	// GetScoresByRun retrieves all scores of a run, ordered by wallet ASC.
	GetScoresByRun(ctx context.Context, runID string) ([]*domain.WalletScoreRecord, error)

	// GetLatestByWallet returns the wallet's score from the latest run that
	// scored it. Returns ErrNotFound if the wallet was never scored.
	GetLatestByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error)
}

// FeatureStore provides access to wallet_features storage.
type FeatureStore interface {
	// InsertBulk adds feature rows. Fails entire batch on any duplicate (run_id, wallet).
	InsertBulk(ctx context.Context, records []*domain.WalletFeatureRecord) error

	// GetByRun retrieves all feature rows of a run, ordered by wallet ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.WalletFeatureRecord, error)
}
