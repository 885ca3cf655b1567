package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletFeatureRecord // keyed by (run_id, wallet)
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[string]*domain.WalletFeatureRecord),
	}
}

func featureKey(runID, wallet string) string {
	return runID + "|" + wallet
}

// InsertBulk adds multiple rows. Fails entire batch on duplicate.
func (s *FeatureStore) InsertBulk(_ context.Context, records []*domain.WalletFeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(records))

	for _, r := range records {
		if r == nil || r.RunID == "" || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
		key := featureKey(r.RunID, r.Wallet)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		recordCopy := *r
		s.data[featureKey(r.RunID, r.Wallet)] = &recordCopy
	}

	return nil
}

// GetByRun retrieves all rows of a run, ordered by wallet ASC.
func (s *FeatureStore) GetByRun(_ context.Context, runID string) ([]*domain.WalletFeatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletFeatureRecord
	for _, r := range s.data {
		if r.RunID == runID {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Wallet < result[j].Wallet
	})

	return result, nil
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
