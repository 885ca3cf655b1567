package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu     sync.RWMutex
	runs   map[string]*domain.ScoreRun
	scores map[string]map[string]*domain.WalletScoreRecord // run_id -> wallet -> score
}

// NewScoreStore creates a new in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		runs:   make(map[string]*domain.ScoreRun),
		scores: make(map[string]map[string]*domain.WalletScoreRecord),
	}
}

// InsertRun adds a run and its scores atomically.
func (s *ScoreStore) InsertRun(_ context.Context, run *domain.ScoreRun, scores []*domain.WalletScoreRecord) error {
	if err := storage.ValidateRun(run, scores); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := *run
	s.runs[run.RunID] = &runCopy

	byWallet := make(map[string]*domain.WalletScoreRecord, len(scores))
	for _, sc := range scores {
		scoreCopy := *sc
		byWallet[sc.Wallet] = &scoreCopy
	}
	s.scores[run.RunID] = byWallet

	return nil
}

// GetRun retrieves run metadata by ID.
func (s *ScoreStore) GetRun(_ context.Context, runID string) (*domain.ScoreRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	runCopy := *run
	return &runCopy, nil
}

// GetLatestRun returns the newest run.
func (s *ScoreStore) GetLatestRun(_ context.Context) (*domain.ScoreRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.ScoreRun
	for _, run := range s.runs {
		if latest == nil || storage.RunIsNewer(run, latest) {
			latest = run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	runCopy := *latest
	return &runCopy, nil
}

// GetScoresByRun retrieves all scores of a run, ordered by wallet ASC.
func (s *ScoreStore) GetScoresByRun(_ context.Context, runID string) ([]*domain.WalletScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletScoreRecord
	for _, sc := range s.scores[runID] {
		scoreCopy := *sc
		result = append(result, &scoreCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Wallet < result[j].Wallet
	})

	return result, nil
}

// GetLatestByWallet returns the wallet's score from the newest run that scored it.
func (s *ScoreStore) GetLatestByWallet(_ context.Context, wallet string) (*domain.WalletScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		bestRun   *domain.ScoreRun
		bestScore *domain.WalletScoreRecord
	)
	for runID, byWallet := range s.scores {
		sc, ok := byWallet[wallet]
		if !ok {
			continue
		}
		run := s.runs[runID]
		if bestRun == nil || storage.RunIsNewer(run, bestRun) {
			bestRun = run
			bestScore = sc
		}
	}
	if bestScore == nil {
		return nil, storage.ErrNotFound
	}
	scoreCopy := *bestScore
	return &scoreCopy, nil
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
