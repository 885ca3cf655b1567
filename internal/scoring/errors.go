// Package scoring implements population scaling, weighted combination and
// rescaling of wallet features into 0..1000 credit scores.
package scoring

import (
	"errors"
	"fmt"
)

// ErrEmptyPopulation is returned when there are no wallets to score.
var ErrEmptyPopulation = errors.New("empty population: no wallets to score")

// Stages that can report a degenerate range.
const (
	StageScaler   = "scaler"
	StageRescaler = "rescaler"
)

// ColumnRawScore names the raw score column rescaled by the final stage.
const ColumnRawScore = "rawScore"

// DegenerateRangeWarning reports a column whose population max equals its min.
// Every value in that column was set to 0. It is informational, not a failure.
type DegenerateRangeWarning struct {
	Stage  string
	Column string
}

func (w DegenerateRangeWarning) String() string {
	return fmt.Sprintf("%s: zero-width range in %s, filled with 0", w.Stage, w.Column)
}
