package domain

import "time"

// Action is the closed set of lending actions the scorer distinguishes.
type Action string

const (
	ActionDeposit         Action = "deposit"
	ActionBorrow          Action = "borrow"
	ActionRepay           Action = "repay"
	ActionLiquidationCall Action = "liquidationcall"
	ActionOther           Action = "other"
)

// ParseAction maps a raw action string onto the closed set.
// Matching is exact; anything unrecognized becomes ActionOther.
func ParseAction(s string) Action {
	switch a := Action(s); a {
	case ActionDeposit, ActionBorrow, ActionRepay, ActionLiquidationCall:
		return a
	default:
		return ActionOther
	}
}

// String returns the string representation of Action.
func (a Action) String() string {
	return string(a)
}

// TransactionEntry is a typed, normalized lending event.
type TransactionEntry struct {
	Wallet    string    // non-empty wallet identifier
	TxHash    string    // used only for counting
	Action    Action    // closed set, unknown -> other
	Timestamp time.Time // UTC, from unix seconds
	AmountUSD float64   // amount * assetPriceUSD, >= 0
}
