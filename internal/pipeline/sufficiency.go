package pipeline

import (
	"fmt"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/scoring"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks. Failing checks do not stop the run,
// they flag scores that should not be trusted.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// SufficiencyThresholds configures CheckSufficiency.
type SufficiencyThresholds struct {
	MaxSkippedRatio float64 // skipped / read
	MinWallets      int
}

// DefaultSufficiencyThresholds are used unless overridden.
var DefaultSufficiencyThresholds = SufficiencyThresholds{
	MaxSkippedRatio: 0.05,
	MinWallets:      2,
}

// CheckSufficiency evaluates run quality:
//  1. share of skipped events
//  2. population size (one wallet always scores 0)
//  3. final raw score range is not degenerate
func CheckSufficiency(run *domain.ScoreRun, warnings []scoring.DegenerateRangeWarning, th SufficiencyThresholds) *SufficiencyResult {
	result := &SufficiencyResult{AllPass: true}

	add := func(c SufficiencyCheck) {
		result.Checks = append(result.Checks, c)
		if !c.Pass {
			result.AllPass = false
		}
	}

	ratio := 0.0
	if run.EventsRead > 0 {
		ratio = float64(run.EventsSkipped) / float64(run.EventsRead)
	}
	add(SufficiencyCheck{
		Name:      "Skipped events",
		Threshold: fmt.Sprintf("<= %.1f%%", th.MaxSkippedRatio*100),
		Actual:    fmt.Sprintf("%.1f%% (%d/%d)", ratio*100, run.EventsSkipped, run.EventsRead),
		Pass:      ratio <= th.MaxSkippedRatio,
	})

	add(SufficiencyCheck{
		Name:      "Wallets scored",
		Threshold: fmt.Sprintf(">= %d", th.MinWallets),
		Actual:    fmt.Sprintf("%d", run.WalletCount),
		Pass:      run.WalletCount >= th.MinWallets,
	})

	degenerate := false
	for _, w := range warnings {
		if w.Stage == scoring.StageRescaler {
			degenerate = true
		}
	}
	actual := "non-zero width"
	if degenerate {
		actual = "all raw scores equal"
	}
	add(SufficiencyCheck{
		Name:      "Raw score range",
		Threshold: "max > min",
		Actual:    actual,
		Pass:      !degenerate,
	})

	return result
}
