package ingestion

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wallet-credit-score/internal/address"
	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
)

// Accepted timestamp range in unix seconds: 0001-01-01 .. 9999-12-31.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

// maxExponent bounds the decimal exponent accepted from input. Anything larger
// is outside float64 range and makes decimal arithmetic unbounded.
const maxExponent = 400

var nanosPerSecond = decimal.NewFromInt(int64(time.Second))

// Normalizer converts raw events into transaction entries.
type Normalizer struct {
	policy address.Policy
	logger *zap.SugaredLogger
}

// NewNormalizer creates a normalizer enforcing the given wallet address policy.
func NewNormalizer(policy address.Policy, logger *zap.SugaredLogger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Normalizer{policy: policy, logger: logger}
}

// Result is the outcome of normalizing a whole batch.
type Result struct {
	Entries []*domain.TransactionEntry
	Skipped []*MalformedEventError
}

// Normalize converts one raw event using the opaque wallet policy.
func Normalize(raw *domain.RawEvent) (*domain.TransactionEntry, error) {
	return normalizeAt(-1, raw, address.PolicyAny)
}

// Normalize converts one raw event. It fails only on an unusable timestamp or
// wallet identifier; actionData problems default the amount to 0.
func (n *Normalizer) Normalize(raw *domain.RawEvent) (*domain.TransactionEntry, error) {
	return normalizeAt(-1, raw, n.policy)
}

// NormalizeAll converts every event, skipping and logging malformed ones.
// A skipped record never affects the entries of other records.
func (n *Normalizer) NormalizeAll(raws []*domain.RawEvent) *Result {
	res := &Result{Entries: make([]*domain.TransactionEntry, 0, len(raws))}

	for i, raw := range raws {
		entry, err := normalizeAt(i, raw, n.policy)
		if err != nil {
			merr := err.(*MalformedEventError)
			n.logger.Warnw("skipping malformed event",
				"index", merr.Index,
				"txHash", merr.TxHash,
				"field", merr.Field,
				"reason", merr.Reason,
			)
			observability.RecordEventSkipped(merr.Field)
			res.Skipped = append(res.Skipped, merr)
			continue
		}
		observability.RecordEventNormalized()
		res.Entries = append(res.Entries, entry)
	}

	return res
}

func normalizeAt(index int, raw *domain.RawEvent, policy address.Policy) (*domain.TransactionEntry, error) {
	if raw == nil {
		return nil, &MalformedEventError{Index: index, Field: FieldRecord, Reason: "nil record"}
	}

	if reason := policy.Validate(raw.UserWallet); reason != "" {
		return nil, &MalformedEventError{Index: index, TxHash: raw.TxHash, Field: FieldWallet, Reason: reason}
	}

	ts, err := parseUnixSeconds(raw.Timestamp)
	if err != nil {
		return nil, &MalformedEventError{Index: index, TxHash: raw.TxHash, Field: FieldTimestamp, Reason: err.Error()}
	}

	amount := nonNegativeDecimal(raw.ActionData[domain.ActionDataAmount])
	price := nonNegativeDecimal(raw.ActionData[domain.ActionDataAssetPriceUSD])

	return &domain.TransactionEntry{
		Wallet:    raw.UserWallet,
		TxHash:    raw.TxHash,
		Action:    domain.ParseAction(raw.Action),
		Timestamp: ts,
		AmountUSD: amountUSD(amount, price),
	}, nil
}

// parseUnixSeconds interprets v as an integer or fractional count of seconds.
func parseUnixSeconds(v any) (time.Time, error) {
	d, ok := toDecimal(v)
	if !ok {
		return time.Time{}, fmt.Errorf("not a number of seconds: %v", v)
	}

	if d.LessThan(decimal.NewFromInt(minUnixSeconds)) || d.GreaterThan(decimal.NewFromInt(maxUnixSeconds)) {
		return time.Time{}, fmt.Errorf("out of range: %s", d.String())
	}
	sec := d.IntPart()
	nsec := d.Sub(decimal.NewFromInt(sec)).Mul(nanosPerSecond).IntPart()

	return time.Unix(sec, nsec).UTC(), nil
}

// amountUSD returns amount * price as a float64, or 0 when the product does not
// fit in a finite float64.
func amountUSD(amount, price decimal.Decimal) float64 {
	usd := amount.Mul(price).InexactFloat64()
	if math.IsInf(usd, 0) || math.IsNaN(usd) {
		return 0
	}
	return usd
}

// nonNegativeDecimal returns v as a decimal, or zero when v is absent,
// non-numeric, non-finite or negative.
func nonNegativeDecimal(v any) decimal.Decimal {
	d, ok := toDecimal(v)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// toDecimal accepts JSON numbers, Go numeric types and numeric strings.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		return fromString(t.String())
	case string:
		return fromString(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		return toDecimal(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	default:
		return decimal.Zero, false
	}
}

func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return decimal.Zero, false
	}
	return d, true
}
