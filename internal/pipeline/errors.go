package pipeline

import (
	"fmt"

	"wallet-credit-score/internal/scoring"
)

// EmptyPopulationError is returned by Scorer.Run when no event survived
// normalization. errors.Is(err, scoring.ErrEmptyPopulation) is true.
type EmptyPopulationError struct {
	EventsRead    int
	EventsSkipped int
}

func (e *EmptyPopulationError) Error() string {
	return fmt.Sprintf("empty population: %d events read, %d skipped", e.EventsRead, e.EventsSkipped)
}

func (e *EmptyPopulationError) Unwrap() error {
	return scoring.ErrEmptyPopulation
}
