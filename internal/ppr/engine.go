package ppr

import (
	"fmt"

	"ppr/internal/domain"
)

type Result struct {
	domain.Derived
	// Warnings carries configuration problems that forced a zero result.
	Warnings []error
}

// Evaluate runs quota, attainment, progress and status in order over one
// goal snapshot. It never mutates its inputs.
func Evaluate(goal domain.Goal, launches []domain.Launch) Result {
	var warnings []error
	if MaxLaunches(goal.Frequency) == 0 {
		warnings = append(warnings, fmt.Errorf("%w: %q", ErrUnknownFrequency, goal.Frequency))
	}
	attainment := Attainment(goal, launches)
	progress := TaskProgress(launches, goal.Frequency)
	status := ResolveStatus(goal.Status, launches, progress)
	return Result{
		Derived: domain.Derived{
			EarnedAttainment: attainment,
			TaskProgress:     progress,
			Status:           status,
		},
		Warnings: warnings,
	}
}
