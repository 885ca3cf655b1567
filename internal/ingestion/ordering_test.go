package ingestion

import (
	"errors"
	"testing"
	"time"

	"wallet-credit-score/internal/domain"
)

func at(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func TestSortEntries(t *testing.T) {
	// Intentionally unordered entries
	entries := []*domain.TransactionEntry{
		{Timestamp: at(200), TxHash: "tx2", Wallet: "a"},
		{Timestamp: at(100), TxHash: "tx1", Wallet: "b"},
		{Timestamp: at(100), TxHash: "tx1", Wallet: "a"},
		{Timestamp: at(100), TxHash: "tx2", Wallet: "a"},
		{Timestamp: at(300), TxHash: "tx1", Wallet: "a"},
	}

	SortEntries(entries)

	// Verify order: (timestamp ASC, tx_hash ASC, wallet ASC)
	expected := []struct {
		sec    int64
		txHash string
		wallet string
	}{
		{100, "tx1", "a"},
		{100, "tx1", "b"},
		{100, "tx2", "a"},
		{200, "tx2", "a"},
		{300, "tx1", "a"},
	}

	for i, exp := range expected {
		e := entries[i]
		if e.Timestamp.Unix() != exp.sec || e.TxHash != exp.txHash || e.Wallet != exp.wallet {
			t.Errorf("Index %d: got (%d, %s, %s), want (%d, %s, %s)",
				i, e.Timestamp.Unix(), e.TxHash, e.Wallet, exp.sec, exp.txHash, exp.wallet)
		}
	}

	if err := ValidateEntryOrdering(entries); err != nil {
		t.Errorf("Sorted entries should validate, got %v", err)
	}
}

func TestSortEntries_ActionTieBreak(t *testing.T) {
	entries := []*domain.TransactionEntry{
		{Timestamp: at(100), TxHash: "tx1", Wallet: "a", Action: domain.ActionRepay},
		{Timestamp: at(100), TxHash: "tx1", Wallet: "a", Action: domain.ActionBorrow},
	}

	SortEntries(entries)

	if entries[0].Action != domain.ActionBorrow {
		t.Errorf("Expected borrow first, got %s", entries[0].Action)
	}
}

func TestValidateEntryOrdering(t *testing.T) {
	tests := []struct {
		name    string
		entries []*domain.TransactionEntry
		wantErr error
	}{
		{
			name:    "empty",
			entries: nil,
		},
		{
			name: "duplicates allowed",
			entries: []*domain.TransactionEntry{
				{Timestamp: at(100), TxHash: "tx1", Wallet: "a"},
				{Timestamp: at(100), TxHash: "tx1", Wallet: "a"},
			},
		},
		{
			name: "timestamp out of order",
			entries: []*domain.TransactionEntry{
				{Timestamp: at(200), TxHash: "tx1", Wallet: "a"},
				{Timestamp: at(100), TxHash: "tx1", Wallet: "a"},
			},
			wantErr: ErrInvalidOrdering,
		},
		{
			name: "tx hash out of order",
			entries: []*domain.TransactionEntry{
				{Timestamp: at(100), TxHash: "tx2", Wallet: "a"},
				{Timestamp: at(100), TxHash: "tx1", Wallet: "a"},
			},
			wantErr: ErrInvalidOrdering,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryOrdering(tt.entries)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntryOrdering() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
