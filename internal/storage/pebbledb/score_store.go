// Package pebbledb provides an embedded storage.ScoreStore on Pebble.
package pebbledb

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// Key layout. NUL separates variable-length parts.
//
//	r\x00<run_id>                   -> gob(domain.ScoreRun)
//	s\x00<run_id>\x00<wallet>       -> gob(domain.WalletScoreRecord)
//	w\x00<wallet>\x00<run_id>       -> empty, wallet index
const (
	runPrefix    = 'r'
	scorePrefix  = 's'
	walletPrefix = 'w'
	sep          = 0x00
)

// ScoreStore is a storage.ScoreStore backed by a local Pebble database.
type ScoreStore struct {
	db *pebble.DB
	mu sync.Mutex // serializes InsertRun duplicate check and commit
}

// NewScoreStore opens (or creates) the store under storeDir.
func NewScoreStore(storeDir string) (*ScoreStore, error) {
	db, err := pebble.Open(filepath.Join(storeDir, "wallet-score-store"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %w", err)
	}
	return &ScoreStore{db: db}, nil
}

// Close closes the underlying database.
func (s *ScoreStore) Close() error {
	return s.db.Close()
}

func key(prefix byte, parts ...string) []byte {
	k := []byte{prefix}
	for _, p := range parts {
		k = append(k, sep)
		k = append(k, p...)
	}
	return k
}

// upperBound returns the smallest key greater than every key starting with prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// InsertRun writes the run, its scores and the wallet index in one synced batch.
func (s *ScoreStore) InsertRun(_ context.Context, run *domain.ScoreRun, scores []*domain.WalletScoreRecord) error {
	if err := storage.ValidateRun(run, scores); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runKey := key(runPrefix, run.RunID)
	_, closer, err := s.db.Get(runKey)
	if err == nil {
		closer.Close()
		return storage.ErrDuplicateKey
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("checking run %s: %w", run.RunID, err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	value, err := encode(run)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	if err := batch.Set(runKey, value, nil); err != nil {
		return fmt.Errorf("staging run: %w", err)
	}

	for _, sc := range scores {
		value, err := encode(sc)
		if err != nil {
			return fmt.Errorf("encoding score for %s: %w", sc.Wallet, err)
		}
		if err := batch.Set(key(scorePrefix, run.RunID, sc.Wallet), value, nil); err != nil {
			return fmt.Errorf("staging score: %w", err)
		}
		if err := batch.Set(key(walletPrefix, sc.Wallet, run.RunID), nil, nil); err != nil {
			return fmt.Errorf("staging wallet index: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("committing run %s: %w", run.RunID, err)
	}
	return nil
}

// GetRun retrieves run metadata by ID.
func (s *ScoreStore) GetRun(_ context.Context, runID string) (*domain.ScoreRun, error) {
	value, closer, err := s.db.Get(key(runPrefix, runID))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", runID, err)
	}
	defer closer.Close()

	var run domain.ScoreRun
	if err := decode(value, &run); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &run, nil
}

// GetLatestRun scans all runs and returns the newest.
func (s *ScoreStore) GetLatestRun(_ context.Context) (*domain.ScoreRun, error) {
	prefix := []byte{runPrefix, sep}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %w", err)
	}
	defer iter.Close()

	var latest *domain.ScoreRun
	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, fmt.Errorf("getting value from iter: %w", err)
		}
		var run domain.ScoreRun
		if err := decode(value, &run); err != nil {
			return nil, fmt.Errorf("decoding run: %w", err)
		}
		if latest == nil || storage.RunIsNewer(&run, latest) {
			latest = &run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

// GetScoresByRun retrieves all scores of a run, ordered by wallet ASC.
func (s *ScoreStore) GetScoresByRun(_ context.Context, runID string) ([]*domain.WalletScoreRecord, error) {
	if strings.IndexByte(runID, sep) >= 0 {
		return nil, nil
	}
	prefix := append(key(scorePrefix, runID), sep)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %w", err)
	}
	defer iter.Close()

	var result []*domain.WalletScoreRecord
	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, fmt.Errorf("getting value from iter: %w", err)
		}
		var sc domain.WalletScoreRecord
		if err := decode(value, &sc); err != nil {
			return nil, fmt.Errorf("decoding score: %w", err)
		}
		result = append(result, &sc)
	}

	// byte order of the key already matches, keep it explicit for non-ASCII wallets
	sort.Slice(result, func(i, j int) bool {
		return result[i].Wallet < result[j].Wallet
	})
	return result, nil
}

// GetLatestByWallet walks the wallet index and returns the score from the newest run.
func (s *ScoreStore) GetLatestByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	// a NUL would let the prefix reach into another wallet's keys
	if wallet == "" || strings.IndexByte(wallet, sep) >= 0 {
		return nil, storage.ErrNotFound
	}
	prefix := append(key(walletPrefix, wallet), sep)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %w", err)
	}

	var runIDs []string
	for iter.First(); iter.Valid(); iter.Next() {
		runIDs = append(runIDs, string(iter.Key()[len(prefix):]))
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("closing iterator: %w", err)
	}

	var latest *domain.ScoreRun
	for _, runID := range runIDs {
		run, err := s.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if latest == nil || storage.RunIsNewer(run, latest) {
			latest = run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	value, closer, err := s.db.Get(key(scorePrefix, latest.RunID, wallet))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting score: %w", err)
	}
	defer closer.Close()

	var sc domain.WalletScoreRecord
	if err := decode(value, &sc); err != nil {
		return nil, fmt.Errorf("decoding score: %w", err)
	}
	return &sc, nil
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
