package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"wallet-credit-score/internal/domain"
)

// Batch is the full raw input of one scoring run.
type Batch struct {
	Events []*domain.RawEvent
	// Rejected holds records that could not even be decoded into a RawEvent.
	// They are reported like any other malformed event.
	Rejected []*MalformedEventError
	// Digest is the hex sha256 of the raw input bytes, "" if unknown.
	Digest string
}

// EventSource provides the raw lending events of one run.
type EventSource interface {
	// Load returns every event of the input. The whole input is held in memory.
	Load(ctx context.Context) (*Batch, error)
}

// StaticSource serves an in-memory slice of events. Used by tests and fixtures.
type StaticSource struct {
	events []*domain.RawEvent
}

// NewStaticSource creates a source over the given events.
func NewStaticSource(events []*domain.RawEvent) *StaticSource {
	return &StaticSource{events: events}
}

// Load returns the wrapped events. The digest covers their JSON encoding.
func (s *StaticSource) Load(_ context.Context) (*Batch, error) {
	data, err := json.Marshal(s.events)
	if err != nil {
		return nil, fmt.Errorf("encode static events: %w", err)
	}
	sum := sha256.Sum256(data)
	return &Batch{Events: s.events, Digest: hex.EncodeToString(sum[:])}, nil
}
