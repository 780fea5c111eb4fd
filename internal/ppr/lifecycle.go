package ppr

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ppr/internal/domain"
)

type LaunchInput struct {
	Value       domain.Value
	Note        string
	EvidenceURL string
	Actor       string
	Now         time.Time
}

// CreateLaunch builds the next pending launch for the goal. The quota is a
// hard precondition here, not a UI hint.
func CreateLaunch(goal domain.Goal, launches []domain.Launch, input LaunchInput) (domain.Launch, error) {
	if goal.Status == domain.GoalStatusCanceled {
		return domain.Launch{}, ErrGoalCanceled
	}
	if len(launches) >= MaxLaunches(goal.Frequency) {
		return domain.Launch{}, fmt.Errorf("%w: goal %d allows %d", ErrQuotaExceeded, goal.ID, MaxLaunches(goal.Frequency))
	}
	if err := ValidateValue(goal.InputType, input.Value); err != nil {
		return domain.Launch{}, err
	}
	seq := 0
	for _, launch := range launches {
		if launch.Seq > seq {
			seq = launch.Seq
		}
	}
	return domain.Launch{
		GoalID:      goal.ID,
		Seq:         seq + 1,
		Value:       input.Value,
		Note:        strings.TrimSpace(input.Note),
		EvidenceURL: strings.TrimSpace(input.EvidenceURL),
		Status:      domain.LaunchStatusPending,
		UpdatedBy:   input.Actor,
		CreatedAt:   input.Now,
		UpdatedAt:   input.Now,
	}, nil
}

func ApproveLaunch(launches []domain.Launch, id uuid.UUID, actor string, now time.Time) (domain.Launch, error) {
	launch, err := findLaunch(launches, id)
	if err != nil {
		return domain.Launch{}, err
	}
	if launch.Status != domain.LaunchStatusPending {
		return domain.Launch{}, fmt.Errorf("%w: approve from %s", ErrInvalidTransition, launch.Status)
	}
	launch.Status = domain.LaunchStatusApproved
	launch.RejectionReason = ""
	launch.UpdatedBy = actor
	launch.UpdatedAt = now
	return launch, nil
}

func RejectLaunch(launches []domain.Launch, id uuid.UUID, reason, actor string, now time.Time) (domain.Launch, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Launch{}, &ValidationError{Field: "rejection_reason", Reason: "required"}
	}
	launch, err := findLaunch(launches, id)
	if err != nil {
		return domain.Launch{}, err
	}
	if launch.Status != domain.LaunchStatusPending {
		return domain.Launch{}, fmt.Errorf("%w: reject from %s", ErrInvalidTransition, launch.Status)
	}
	launch.Status = domain.LaunchStatusRejected
	launch.RejectionReason = reason
	launch.UpdatedBy = actor
	launch.UpdatedAt = now
	return launch, nil
}

// ResubmitLaunch lets the launcher correct a rejected launch. Pending and
// approved launches are locked.
func ResubmitLaunch(goal domain.Goal, launches []domain.Launch, id uuid.UUID, input LaunchInput) (domain.Launch, error) {
	launch, err := findLaunch(launches, id)
	if err != nil {
		return domain.Launch{}, err
	}
	if launch.Status != domain.LaunchStatusRejected {
		return domain.Launch{}, fmt.Errorf("%w: launch #%d is %s", ErrLaunchLocked, launch.Seq, launch.Status)
	}
	if err := ValidateValue(goal.InputType, input.Value); err != nil {
		return domain.Launch{}, err
	}
	launch.Value = input.Value
	launch.Note = strings.TrimSpace(input.Note)
	if evidence := strings.TrimSpace(input.EvidenceURL); evidence != "" {
		launch.EvidenceURL = evidence
	}
	launch.Status = domain.LaunchStatusPending
	launch.RejectionReason = ""
	launch.UpdatedBy = input.Actor
	launch.UpdatedAt = input.Now
	return launch, nil
}

// ReopenLaunch is the evaluator's explicit undo of an approval.
func ReopenLaunch(launches []domain.Launch, id uuid.UUID, actor string, now time.Time) (domain.Launch, error) {
	launch, err := findLaunch(launches, id)
	if err != nil {
		return domain.Launch{}, err
	}
	if launch.Status != domain.LaunchStatusApproved {
		return domain.Launch{}, fmt.Errorf("%w: reopen from %s", ErrInvalidTransition, launch.Status)
	}
	launch.Status = domain.LaunchStatusPending
	launch.UpdatedBy = actor
	launch.UpdatedAt = now
	return launch, nil
}

// Apply returns a copy of launches with changed replacing the launch of the
// same seq, or appended when the seq is new.
func Apply(launches []domain.Launch, changed domain.Launch) []domain.Launch {
	out := make([]domain.Launch, 0, len(launches)+1)
	replaced := false
	for _, launch := range launches {
		if launch.Seq == changed.Seq {
			out = append(out, changed)
			replaced = true
			continue
		}
		out = append(out, launch)
	}
	if !replaced {
		out = append(out, changed)
	}
	return out
}

func findLaunch(launches []domain.Launch, id uuid.UUID) (domain.Launch, error) {
	for _, launch := range launches {
		if launch.ID == id {
			return launch, nil
		}
	}
	return domain.Launch{}, fmt.Errorf("%w: %s", ErrLaunchNotFound, id)
}
