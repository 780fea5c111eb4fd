package ppr

import "ppr/internal/domain"

// ResolveStatus derives the goal status from scratch on every call, so a
// reopened or rejected launch pulls a completed goal back to in_progress.
// Canceled is terminal.
func ResolveStatus(current domain.GoalStatus, launches []domain.Launch, taskProgress int) domain.GoalStatus {
	if current == domain.GoalStatusCanceled {
		return domain.GoalStatusCanceled
	}
	if taskProgress >= 100 && allApproved(launches) {
		return domain.GoalStatusCompleted
	}
	if len(launches) > 0 {
		return domain.GoalStatusInProgress
	}
	return domain.GoalStatusPending
}

func allApproved(launches []domain.Launch) bool {
	for _, launch := range launches {
		if launch.Status != domain.LaunchStatusApproved {
			return false
		}
	}
	return true
}
