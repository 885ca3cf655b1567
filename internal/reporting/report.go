package reporting

import (
	"time"

	"wallet-credit-score/internal/domain"
)

// Report represents the scoring run report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Run         domain.ScoreRun

	// Score summary
	Summary   ScoreSummary
	Histogram []HistogramBin

	// Data Quality (skipped events, degenerate ranges)
	DataQuality DataQualitySection

	// Leaderboards, best and worst wallets by credit score
	TopWallets    []*domain.WalletScoreRecord
	BottomWallets []*domain.WalletScoreRecord

	// Full tables (sorted by wallet)
	Scores   []*domain.WalletScoreRecord
	Features []*domain.WalletFeatureRecord
}

// ScoreSummary contains descriptive statistics of the final scores.
type ScoreSummary struct {
	Wallets int
	Min     int
	Max     int
	Mean    float64
	Median  float64
}

// DataQualitySection lists what the run skipped or degraded.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	AllChecksPassed   bool
	SkippedByField    map[string]int // malformed events per offending field
	Warnings          []string       // degenerate ranges
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// HistogramBin counts scores in [Lower, Upper). The last bin is closed.
type HistogramBin struct {
	Lower int
	Upper int
	Count int
}
