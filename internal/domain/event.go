package domain

// RawEvent is one lending-protocol record as exported by the indexer.
// Only UserWallet, TxHash, Timestamp, Action and ActionData are used for scoring.
type RawEvent struct {
	UserWallet string         `json:"userWallet"`
	TxHash     string         `json:"txHash"`
	Network    string         `json:"network,omitempty"`
	Protocol   string         `json:"protocol,omitempty"`
	Timestamp  any            `json:"timestamp"`  // unix seconds; number or numeric string
	Action     string         `json:"action"`     // deposit | borrow | repay | liquidationcall | ...
	ActionData map[string]any `json:"actionData"` // amount, assetPriceUSD, assetSymbol, ...
}

// ActionData keys read by the normalizer.
const (
	ActionDataAmount        = "amount"
	ActionDataAssetPriceUSD = "assetPriceUSD"
	ActionDataAssetSymbol   = "assetSymbol"
)
