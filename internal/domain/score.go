package domain

import "time"

// Credit score bounds.
const (
	MinCreditScore = 0
	MaxCreditScore = 1000
)

// ScoredWallet is the final output of one scoring run for one wallet.
type ScoredWallet struct {
	Wallet      string
	CreditScore int     // 0..1000
	RawScore    float64 // weighted sum before rescaling
}

// WalletScoreRecord is a ScoredWallet bound to the run that produced it.
// Corresponds to wallet_scores table in PostgreSQL.
type WalletScoreRecord struct {
	RunID       string
	Wallet      string
	CreditScore int
	RawScore    float64
}

// WalletFeatureRecord is one feature row persisted for analytics.
// Corresponds to wallet_features table in ClickHouse.
type WalletFeatureRecord struct {
	RunID            string
	Wallet           string
	TransactionCount int
	TotalVolumeUSD   float64
	LiquidationCount int
	RepayCount       int
	BorrowCount      int
	DepositCount     int
	WalletAgeDays    int
	FirstSeenUnix    int64
	RawScore         float64
	CreditScore      int
}

// ScoreRun describes one batch scoring run.
// Corresponds to score_runs table in PostgreSQL.
type ScoreRun struct {
	RunID         string    // deterministic hash of input digest and as-of time
	AsOf          time.Time // reference time for wallet age
	InputDigest   string    // sha256 of the raw input
	EventsRead    int
	EventsSkipped int
	WalletCount   int
	CreatedAt     time.Time
}
