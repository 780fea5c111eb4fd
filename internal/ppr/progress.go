package ppr

import (
	"math"

	"ppr/internal/domain"
)

// TaskProgress is the display completion percentage. Pending launches count
// half so the bar moves as soon as a report is filed.
func TaskProgress(launches []domain.Launch, frequency domain.Frequency) int {
	quota := MaxLaunches(frequency)
	if quota == 0 {
		return 0
	}
	var score float64
	for _, launch := range launches {
		switch launch.Status {
		case domain.LaunchStatusApproved:
			score += 1
		case domain.LaunchStatusPending:
			score += 0.5
		}
	}
	progress := int(math.Round(score / float64(quota) * 100))
	if progress > 100 {
		return 100
	}
	return progress
}
