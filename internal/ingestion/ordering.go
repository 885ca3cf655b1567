package ingestion

import (
	"errors"
	"sort"
	"strings"

	"wallet-credit-score/internal/domain"
)

// ErrInvalidOrdering is returned when entries are not properly ordered.
var ErrInvalidOrdering = errors.New("entries are not in deterministic order")

// SortEntries orders entries by (timestamp ASC, tx_hash ASC, wallet ASC, action ASC).
// Volume is a float sum, so a fixed order keeps it bit-identical across
// differently ordered exports of the same events.
func SortEntries(entries []*domain.TransactionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return compareEntries(entries[i], entries[j]) < 0
	})
}

// ValidateEntryOrdering checks if entries are properly ordered.
// Equal neighbours are allowed: an export may repeat an event.
// Returns ErrInvalidOrdering if not.
func ValidateEntryOrdering(entries []*domain.TransactionEntry) error {
	for i := 1; i < len(entries); i++ {
		if compareEntries(entries[i-1], entries[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareEntries returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (timestamp ASC, tx_hash ASC, wallet ASC, action ASC)
func compareEntries(a, b *domain.TransactionEntry) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	if c := strings.Compare(a.TxHash, b.TxHash); c != 0 {
		return c
	}
	if c := strings.Compare(a.Wallet, b.Wallet); c != 0 {
		return c
	}
	return strings.Compare(string(a.Action), string(b.Action))
}
