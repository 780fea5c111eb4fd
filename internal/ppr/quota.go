package ppr

import "ppr/internal/domain"

// MaxLaunches is the number of reports a goal expects over one semester.
// Zero marks a misconfigured frequency.
func MaxLaunches(frequency domain.Frequency) int {
	switch frequency {
	case domain.FrequencyMonthly:
		return 6
	case domain.FrequencyQuarterly:
		return 2
	case domain.FrequencySemiannual:
		return 1
	default:
		return 0
	}
}
