// Package pipeline wires normalization, aggregation and scoring into one batch run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/features"
	"wallet-credit-score/internal/idhash"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/reporting"
	"wallet-credit-score/internal/scoring"
	"wallet-credit-score/internal/storage"
	"wallet-credit-score/internal/storage/memory"
)

// Output file names written by Run when an output directory is set.
const (
	ScoresFile   = "wallet_scores.csv"
	FeaturesFile = "wallet_features.csv"
	ReportFile   = "SCORE_REPORT.md"
	ChartFile    = "score_distribution.png"
)

// Result is the outcome of one scoring run.
type Result struct {
	Run      *domain.ScoreRun
	Scores   []*domain.ScoredWallet   // sorted by wallet
	Features []*domain.WalletFeatures // sorted by wallet
	Skipped  []*ingestion.MalformedEventError
	Warnings []scoring.DegenerateRangeWarning
	Quality  *SufficiencyResult
	Report   *reporting.Report // nil unless an output directory is set
}

// Scorer orchestrates load -> normalize -> aggregate -> score -> persist -> report.
type Scorer struct {
	source       ingestion.EventSource
	normalizer   *ingestion.Normalizer
	weights      scoring.Weights
	thresholds   SufficiencyThresholds
	scoreStore   storage.ScoreStore
	featureStore storage.FeatureStore
	outputDir    string
	clock        func() time.Time
	asOf         time.Time // zero means clock()
	logger       *zap.SugaredLogger
}

// NewScorer creates a scorer with default weights and in-memory stores.
func NewScorer(source ingestion.EventSource, normalizer *ingestion.Normalizer, logger *zap.SugaredLogger) *Scorer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scorer{
		source:       source,
		normalizer:   normalizer,
		weights:      scoring.DefaultWeights,
		thresholds:   DefaultSufficiencyThresholds,
		scoreStore:   memory.NewScoreStore(),
		featureStore: memory.NewFeatureStore(),
		clock:        func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// WithClock sets a custom clock function for deterministic output.
// Unless WithAsOf is used, the clock also provides the as-of time for wallet age.
func (s *Scorer) WithClock(clock func() time.Time) *Scorer {
	s.clock = clock
	return s
}

// WithAsOf pins the reference time used for wallet age.
func (s *Scorer) WithAsOf(asOf time.Time) *Scorer {
	s.asOf = asOf.UTC()
	return s
}

// WithWeights replaces the default weight table.
func (s *Scorer) WithWeights(w scoring.Weights) *Scorer {
	s.weights = w
	return s
}

// WithSufficiencyThresholds replaces the default quality thresholds.
func (s *Scorer) WithSufficiencyThresholds(th SufficiencyThresholds) *Scorer {
	s.thresholds = th
	return s
}

// WithScoreStore persists runs and scores to store instead of memory.
func (s *Scorer) WithScoreStore(store storage.ScoreStore) *Scorer {
	s.scoreStore = store
	return s
}

// WithFeatureStore persists feature vectors to store instead of memory.
func (s *Scorer) WithFeatureStore(store storage.FeatureStore) *Scorer {
	s.featureStore = store
	return s
}

// WithOutputDir makes Run write CSV, Markdown and PNG outputs into dir.
func (s *Scorer) WithOutputDir(dir string) *Scorer {
	s.outputDir = dir
	return s
}

// Run executes the full pipeline. It returns *EmptyPopulationError when no
// event survives normalization. Output files, when enabled:
// - wallet_scores.csv
// - wallet_features.csv
// - SCORE_REPORT.md
// - score_distribution.png
func (s *Scorer) Run(ctx context.Context) (res *Result, err error) {
	started := s.clock()
	defer func() {
		status := "success"
		if err != nil {
			status = "failed"
		}
		observability.RecordPipelineRun(status, s.clock().Unix())
		observability.RecordStage("total", s.clock().Sub(started).Seconds())
	}()

	asOf := s.asOf
	if asOf.IsZero() {
		asOf = started.UTC()
	}

	// 1. Load
	t := s.clock()
	batch, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	eventsRead := len(batch.Events) + len(batch.Rejected)
	observability.RecordEventRead(eventsRead)
	for _, rej := range batch.Rejected {
		s.logger.Warnw("skipping undecodable event", "index", rej.Index, "reason", rej.Reason)
		observability.RecordEventSkipped(rej.Field)
	}
	s.stageDone("load", t)

	// 2. Normalize
	t = s.clock()
	norm := s.normalizer.NormalizeAll(batch.Events)
	skipped := append(append([]*ingestion.MalformedEventError(nil), batch.Rejected...), norm.Skipped...)
	s.stageDone("normalize", t)

	// 3. Aggregate
	t = s.clock()
	ingestion.SortEntries(norm.Entries)
	if err := ingestion.ValidateEntryOrdering(norm.Entries); err != nil {
		return nil, fmt.Errorf("order entries: %w", err)
	}
	rows := features.Sorted(features.Aggregate(norm.Entries, asOf))
	s.stageDone("aggregate", t)

	if len(rows) == 0 {
		return nil, &EmptyPopulationError{EventsRead: eventsRead, EventsSkipped: len(skipped)}
	}

	// 4. Scale, combine, rescale
	t = s.clock()
	outcome, err := scoring.Score(rows, s.weights)
	if err != nil {
		return nil, fmt.Errorf("score population: %w", err)
	}
	for _, w := range outcome.Warnings {
		s.logger.Warnw("degenerate range", "stage", w.Stage, "column", w.Column)
		observability.RecordDegenerateRange(w.Stage, w.Column)
	}
	s.stageDone("score", t)

	run := &domain.ScoreRun{
		RunID:         idhash.ComputeRunID(batch.Digest, asOf),
		AsOf:          asOf,
		InputDigest:   batch.Digest,
		EventsRead:    eventsRead,
		EventsSkipped: len(skipped),
		WalletCount:   len(rows),
		CreatedAt:     started.UTC(),
	}

	finals := make([]int, len(outcome.Scores))
	for i, sc := range outcome.Scores {
		finals[i] = sc.CreditScore
	}
	observability.RecordScores(finals)

	res = &Result{
		Run:      run,
		Scores:   outcome.Scores,
		Features: rows,
		Skipped:  skipped,
		Warnings: outcome.Warnings,
		Quality:  CheckSufficiency(run, outcome.Warnings, s.thresholds),
	}

	// 5. Persist
	t = s.clock()
	if err := s.persist(ctx, res); err != nil {
		return nil, err
	}
	s.stageDone("persist", t)

	// 6. Report
	if s.outputDir != "" {
		t = s.clock()
		report, err := s.writeOutputs(ctx, res)
		if err != nil {
			return nil, err
		}
		res.Report = report
		s.stageDone("report", t)
	}

	s.logger.Infow("scoring run complete",
		"runID", run.RunID,
		"asOf", run.AsOf.Format(time.RFC3339),
		"eventsRead", run.EventsRead,
		"eventsSkipped", run.EventsSkipped,
		"wallets", run.WalletCount,
		"qualityPassed", res.Quality.AllPass,
	)

	return res, nil
}

func (s *Scorer) stageDone(stage string, start time.Time) {
	elapsed := s.clock().Sub(start)
	observability.RecordStage(stage, elapsed.Seconds())
	s.logger.Debugw("stage done", "stage", stage, "elapsed", elapsed)
}

// persist stores the run, its scores and its features. A run ID already
// present means the same input was scored at the same as-of time; the stored
// copy is identical, so it is kept.
func (s *Scorer) persist(ctx context.Context, res *Result) error {
	scores := make([]*domain.WalletScoreRecord, len(res.Scores))
	for i, sc := range res.Scores {
		scores[i] = &domain.WalletScoreRecord{
			RunID:       res.Run.RunID,
			Wallet:      sc.Wallet,
			CreditScore: sc.CreditScore,
			RawScore:    sc.RawScore,
		}
	}

	err := s.scoreStore.InsertRun(ctx, res.Run, scores)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		s.logger.Infow("run already stored, keeping existing scores", "runID", res.Run.RunID)
	case err != nil:
		return fmt.Errorf("store scores: %w", err)
	}

	if s.featureStore == nil {
		return nil
	}

	records := make([]*domain.WalletFeatureRecord, len(res.Features))
	for i, f := range res.Features {
		sc := res.Scores[i]
		records[i] = &domain.WalletFeatureRecord{
			RunID:            res.Run.RunID,
			Wallet:           f.Wallet,
			TransactionCount: f.TransactionCount,
			TotalVolumeUSD:   f.TotalVolumeUSD,
			LiquidationCount: f.LiquidationCount,
			RepayCount:       f.RepayCount,
			BorrowCount:      f.BorrowCount,
			DepositCount:     f.DepositCount,
			WalletAgeDays:    f.WalletAgeDays,
			FirstSeenUnix:    f.FirstSeen.Unix(),
			RawScore:         sc.RawScore,
			CreditScore:      sc.CreditScore,
		}
	}

	err = s.featureStore.InsertBulk(ctx, records)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		s.logger.Infow("features already stored", "runID", res.Run.RunID)
	case err != nil:
		return fmt.Errorf("store features: %w", err)
	}
	return nil
}

// writeOutputs renders the stored run into the output directory.
func (s *Scorer) writeOutputs(ctx context.Context, res *Result) (*reporting.Report, error) {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return nil, err
	}

	report, err := reporting.NewGenerator(s.scoreStore, s.featureStore).
		WithClock(s.clock).
		Generate(ctx, res.Run.RunID)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	report.DataQuality = dataQuality(res)

	files := map[string]string{
		ScoresFile:   reporting.RenderScoresCSV(report.Scores),
		FeaturesFile: reporting.RenderFeaturesCSV(report.Features),
		ReportFile:   reporting.RenderMarkdown(report),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(s.outputDir, name), []byte(content), 0644); err != nil {
			return nil, err
		}
	}

	chart, err := os.Create(filepath.Join(s.outputDir, ChartFile))
	if err != nil {
		return nil, err
	}
	if err := reporting.RenderHistogramPNG(chart, report.Histogram); err != nil {
		chart.Close()
		return nil, fmt.Errorf("render chart: %w", err)
	}
	if err := chart.Close(); err != nil {
		return nil, err
	}

	s.logger.Infow("outputs written", "dir", s.outputDir)
	return report, nil
}

// dataQuality converts run diagnostics to the report section.
func dataQuality(res *Result) reporting.DataQualitySection {
	checks := make([]reporting.SufficiencyCheckRow, len(res.Quality.Checks))
	for i, c := range res.Quality.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}

	skipped := make(map[string]int)
	for _, sk := range res.Skipped {
		skipped[sk.Field]++
	}

	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.String()
	}

	return reporting.DataQualitySection{
		SufficiencyChecks: checks,
		AllChecksPassed:   res.Quality.AllPass,
		SkippedByField:    skipped,
		Warnings:          warnings,
	}
}
