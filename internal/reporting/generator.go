package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
)

// LeaderboardSize is the number of wallets listed in each leaderboard.
const LeaderboardSize = 10

// Generator produces reports from stored runs.
type Generator struct {
	scoreStore   storage.ScoreStore
	featureStore storage.FeatureStore // optional
	now          func() time.Time     // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. featureStore may be nil.
func NewGenerator(scoreStore storage.ScoreStore, featureStore storage.FeatureStore) *Generator {
	return &Generator{
		scoreStore:   scoreStore,
		featureStore: featureStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for runID, or for the latest run when runID is empty.
// Data quality is not persisted and is left for the caller to fill in.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	var (
		run *domain.ScoreRun
		err error
	)
	if runID == "" {
		run, err = g.scoreStore.GetLatestRun(ctx)
	} else {
		run, err = g.scoreStore.GetRun(ctx, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %q: %w", runID, err)
	}

	scores, err := g.scoreStore.GetScoresByRun(ctx, run.RunID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	var features []*domain.WalletFeatureRecord
	if g.featureStore != nil {
		features, err = g.featureStore.GetByRun(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("load features: %w", err)
		}
	}

	values := make([]int, len(scores))
	for i, s := range scores {
		values[i] = s.CreditScore
	}

	top, bottom := leaderboards(scores, LeaderboardSize)

	return &Report{
		GeneratedAt:   g.now(),
		Run:           *run,
		Summary:       Summarize(values),
		Histogram:     Histogram(values),
		TopWallets:    top,
		BottomWallets: bottom,
		Scores:        scores,
		Features:      features,
	}, nil
}

// leaderboards returns the n highest and n lowest scored wallets.
// Ties are broken by wallet ASC so output is deterministic.
func leaderboards(scores []*domain.WalletScoreRecord, n int) (top, bottom []*domain.WalletScoreRecord) {
	ranked := append([]*domain.WalletScoreRecord(nil), scores...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CreditScore != ranked[j].CreditScore {
			return ranked[i].CreditScore > ranked[j].CreditScore
		}
		return ranked[i].Wallet < ranked[j].Wallet
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	top = ranked[:n]

	bottom = make([]*domain.WalletScoreRecord, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		bottom = append(bottom, ranked[i])
	}
	return top, bottom
}
