package ingestion

import (
	"errors"
	"fmt"
)

// ErrMalformedEvent matches every *MalformedEventError via errors.Is.
var ErrMalformedEvent = errors.New("malformed event")

// Fields reported by MalformedEventError.
const (
	FieldTimestamp = "timestamp"
	FieldWallet    = "userWallet"
	FieldRecord    = "record"
)

// MalformedEventError reports a record that cannot be turned into a
// transaction entry. The record is excluded from aggregation.
type MalformedEventError struct {
	Index  int    // position in the input, -1 if unknown
	TxHash string // may be empty
	Field  string // FieldTimestamp | FieldWallet | FieldRecord
	Reason string
}

func (e *MalformedEventError) Error() string {
	where := "event"
	if e.Index >= 0 {
		where = fmt.Sprintf("event #%d", e.Index)
	}
	if e.TxHash != "" {
		where += " (tx " + e.TxHash + ")"
	}
	return fmt.Sprintf("malformed %s: %s: %s", where, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedEvent) true.
func (e *MalformedEventError) Is(target error) bool {
	return target == ErrMalformedEvent
}
