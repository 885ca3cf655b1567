package domain

import "time"

// WalletFeatures is the aggregate feature vector of one wallet.
// Every counter defaults to 0 when the wallet never performed that action.
type WalletFeatures struct {
	Wallet           string
	TransactionCount int     // all entries, including unknown actions
	TotalVolumeUSD   float64 // sum of AmountUSD
	LiquidationCount int
	RepayCount       int
	BorrowCount      int
	DepositCount     int
	WalletAgeDays    int       // whole days between FirstSeen and the run's as-of time
	FirstSeen        time.Time // earliest observed timestamp
}

// ScaledFeatures holds the population-scaled columns of one wallet, each in [0,1].
type ScaledFeatures struct {
	Wallet           string
	TransactionCount float64
	TotalVolumeUSD   float64
	LiquidationCount float64
	RepayCount       float64
	WalletAgeDays    float64
}
