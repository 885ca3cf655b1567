package clickhouse

import (
	"context"
	"fmt"
	"time"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple rows. Fails entire batch on duplicate (run_id, wallet).
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *FeatureStore) InsertBulk(ctx context.Context, records []*domain.WalletFeatureRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_wallet_features", time.Since(start).Seconds(), err)
	}()

	// Check for intra-batch duplicates
	type key struct {
		runID  string
		wallet string
	}
	seen := make(map[key]struct{}, len(records))
	runs := make(map[string]struct{})
	for _, r := range records {
		if r == nil || r.RunID == "" || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.RunID, r.Wallet}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		runs[r.RunID] = struct{}{}
	}

	// Check for duplicates against existing DB rows, one query per run
	for runID := range runs {
		existing, err := s.walletsInRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, r := range records {
			if r.RunID != runID {
				continue
			}
			if _, exists := existing[r.Wallet]; exists {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_features (
			run_id, wallet,
			transaction_count, total_volume_usd,
			liquidation_count, repay_count, borrow_count, deposit_count,
			wallet_age_days, first_seen_unix,
			raw_score, credit_score
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.RunID, r.Wallet,
			uint32(r.TransactionCount), r.TotalVolumeUSD,
			uint32(r.LiquidationCount), uint32(r.RepayCount), uint32(r.BorrowCount), uint32(r.DepositCount),
			int32(r.WalletAgeDays), r.FirstSeenUnix,
			r.RawScore, uint16(r.CreditScore),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all rows of a run, ordered by wallet ASC.
func (s *FeatureStore) GetByRun(ctx context.Context, runID string) ([]*domain.WalletFeatureRecord, error) {
	query := `
		SELECT
			run_id, wallet,
			transaction_count, total_volume_usd,
			liquidation_count, repay_count, borrow_count, deposit_count,
			wallet_age_days, first_seen_unix,
			raw_score, credit_score
		FROM wallet_features
		WHERE run_id = ?
		ORDER BY wallet ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanWalletFeatures(rows)
}

// walletsInRun returns the set of wallets already stored for runID.
func (s *FeatureStore) walletsInRun(ctx context.Context, runID string) (map[string]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT wallet FROM wallet_features WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := make(map[string]struct{})
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		wallets[w] = struct{}{}
	}
	return wallets, rows.Err()
}

// scanWalletFeatures scans multiple rows.
func scanWalletFeatures(rows chRows) ([]*domain.WalletFeatureRecord, error) {
	var records []*domain.WalletFeatureRecord

	for rows.Next() {
		var r domain.WalletFeatureRecord
		var txCount, liquidations, repays, borrows, deposits uint32
		var ageDays int32
		var creditScore uint16

		err := rows.Scan(
			&r.RunID, &r.Wallet,
			&txCount, &r.TotalVolumeUSD,
			&liquidations, &repays, &borrows, &deposits,
			&ageDays, &r.FirstSeenUnix,
			&r.RawScore, &creditScore,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet features row: %w", err)
		}

		r.TransactionCount = int(txCount)
		r.LiquidationCount = int(liquidations)
		r.RepayCount = int(repays)
		r.BorrowCount = int(borrows)
		r.DepositCount = int(deposits)
		r.WalletAgeDays = int(ageDays)
		r.CreditScore = int(creditScore)

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet features rows: %w", err)
	}

	return records, nil
}
