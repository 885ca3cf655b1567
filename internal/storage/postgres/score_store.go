package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/storage"
)

// ScoreStore implements storage.ScoreStore using PostgreSQL.
type ScoreStore struct {
	pool *Pool
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(pool *Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

func observe(operation string, start time.Time, err error) {
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), err)
}

// InsertRun adds a run and its scores in one transaction.
// Scores are streamed with COPY. Returns ErrDuplicateKey if run_id exists.
func (s *ScoreStore) InsertRun(ctx context.Context, run *domain.ScoreRun, scores []*domain.WalletScoreRecord) (err error) {
	if err := storage.ValidateRun(run, scores); err != nil {
		return err
	}

	start := time.Now()
	defer func() { observe("insert_run", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO score_runs (
			run_id, as_of, input_digest,
			events_read, events_skipped, wallet_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		run.RunID, run.AsOf, run.InputDigest,
		run.EventsRead, run.EventsSkipped, run.WalletCount, run.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert score run: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"wallet_scores"},
		[]string{"run_id", "wallet", "credit_score", "raw_score"},
		pgx.CopyFromSlice(len(scores), func(i int) ([]any, error) {
			sc := scores[i]
			return []any{sc.RunID, sc.Wallet, sc.CreditScore, sc.RawScore}, nil
		}),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy wallet scores: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

const selectRun = `
	SELECT
		run_id, as_of, input_digest,
		events_read, events_skipped, wallet_count, created_at
	FROM score_runs
`

// GetRun retrieves run metadata by ID. Returns ErrNotFound if not exists.
func (s *ScoreStore) GetRun(ctx context.Context, runID string) (*domain.ScoreRun, error) {
	run, err := scanScoreRun(s.pool.QueryRow(ctx, selectRun+` WHERE run_id = $1`, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get score run: %w", err)
	}
	return run, nil
}

// GetLatestRun returns the newest run. Returns ErrNotFound if none stored.
func (s *ScoreStore) GetLatestRun(ctx context.Context) (*domain.ScoreRun, error) {
	query := selectRun + ` ORDER BY as_of DESC, created_at DESC, run_id DESC LIMIT 1`

	run, err := scanScoreRun(s.pool.QueryRow(ctx, query))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest score run: %w", err)
	}
	return run, nil
}

// GetScoresByRun retrieves all scores of a run, ordered by wallet ASC.
func (s *ScoreStore) GetScoresByRun(ctx context.Context, runID string) (_ []*domain.WalletScoreRecord, err error) {
	start := time.Now()
	defer func() { observe("get_scores_by_run", start, err) }()

	rows, err := s.pool.Query(ctx, `
		SELECT run_id, wallet, credit_score, raw_score
		FROM wallet_scores
		WHERE run_id = $1
		ORDER BY wallet ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get wallet scores by run: %w", err)
	}
	defer rows.Close()

	var result []*domain.WalletScoreRecord
	for rows.Next() {
		var sc domain.WalletScoreRecord
		if err := rows.Scan(&sc.RunID, &sc.Wallet, &sc.CreditScore, &sc.RawScore); err != nil {
			return nil, fmt.Errorf("scan wallet score: %w", err)
		}
		result = append(result, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet scores: %w", err)
	}
	return result, nil
}

// GetLatestByWallet returns the wallet's score from the newest run that scored it.
func (s *ScoreStore) GetLatestByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	query := `
		SELECT s.run_id, s.wallet, s.credit_score, s.raw_score
		FROM wallet_scores s
		JOIN score_runs r ON r.run_id = s.run_id
		WHERE s.wallet = $1
		ORDER BY r.as_of DESC, r.created_at DESC, r.run_id DESC
		LIMIT 1
	`

	var sc domain.WalletScoreRecord
	err := s.pool.QueryRow(ctx, query, wallet).Scan(&sc.RunID, &sc.Wallet, &sc.CreditScore, &sc.RawScore)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest wallet score: %w", err)
	}
	return &sc, nil
}

// scanScoreRun scans a single run row.
func scanScoreRun(row pgx.Row) (*domain.ScoreRun, error) {
	var r domain.ScoreRun
	err := row.Scan(
		&r.RunID, &r.AsOf, &r.InputDigest,
		&r.EventsRead, &r.EventsSkipped, &r.WalletCount, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.AsOf = r.AsOf.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
