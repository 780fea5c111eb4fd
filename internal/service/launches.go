package service

import (
	"context"
	"fmt"
	"log/slog"

	"ppr/internal/domain"
	"ppr/internal/ppr"
	"ppr/internal/store"

	"github.com/google/uuid"
)

type LaunchDraft struct {
	Value       domain.Value
	Note        string
	EvidenceURL string
}

type EvaluationAction string

const (
	ActionApprove EvaluationAction = "approve"
	ActionReject  EvaluationAction = "reject"
	ActionReopen  EvaluationAction = "reopen"
)

type Evaluation struct {
	GoalID          int64
	LaunchID        uuid.UUID
	Action          EvaluationAction
	RejectionReason string
}

type LaunchResult struct {
	Goal   domain.Goal
	Launch domain.Launch
}

func canLaunch(actor domain.User, goal domain.Goal) error {
	if goal.LauncherID == actor.ID || actor.HasRole(domain.RoleSuperuser) {
		return nil
	}
	return fmt.Errorf("%w: user %d is not the launcher of goal %d", ErrForbidden, actor.ID, goal.ID)
}

func canEvaluate(actor domain.User, goal domain.Goal) error {
	if actor.HasRole(domain.RoleSuperuser) {
		return nil
	}
	if !actor.HasRole(domain.RoleEvaluator) {
		return fmt.Errorf("%w: evaluating launches needs an evaluator", ErrForbidden)
	}
	if actor.SectorID != 0 && actor.SectorID != goal.SectorID {
		return fmt.Errorf("%w: goal %d belongs to another sector", ErrForbidden, goal.ID)
	}
	return nil
}

// CreateLaunch files the next periodic result for a goal. Quota, seq and the
// derived goal fields are all decided under the goal lock.
func (s *Service) CreateLaunch(ctx context.Context, actor domain.User, goalID int64, draft LaunchDraft) (LaunchResult, error) {
	mutated, err := s.mutate(ctx, "create_launch", goalID, func(goal domain.Goal, launches []domain.Launch) (store.Mutation, error) {
		if err := canLaunch(actor, goal); err != nil {
			return store.Mutation{}, err
		}
		launch, err := ppr.CreateLaunch(goal, launches, ppr.LaunchInput{
			Value:       draft.Value,
			Note:        draft.Note,
			EvidenceURL: draft.EvidenceURL,
			Actor:       actorLabel(actor),
			Now:         s.now(),
		})
		if err != nil {
			return store.Mutation{}, err
		}
		return store.Mutation{Launch: &launch, Derived: s.derive(goal, ppr.Apply(launches, launch))}, nil
	})
	if err != nil {
		return LaunchResult{}, err
	}
	s.metrics.LaunchTransition("create")
	s.logger.Info("launch created",
		slog.Int64("goal_id", goalID),
		slog.String("launch_id", mutated.Launch.ID.String()),
		slog.Int("seq", mutated.Launch.Seq),
	)
	return LaunchResult{Goal: mutated.Goal, Launch: *mutated.Launch}, nil
}

// ResubmitLaunch replaces the value of a rejected launch and sends it back to
// the evaluator.
func (s *Service) ResubmitLaunch(ctx context.Context, actor domain.User, goalID int64, launchID uuid.UUID, draft LaunchDraft) (LaunchResult, error) {
	mutated, err := s.mutate(ctx, "resubmit_launch", goalID, func(goal domain.Goal, launches []domain.Launch) (store.Mutation, error) {
		if err := canLaunch(actor, goal); err != nil {
			return store.Mutation{}, err
		}
		if goal.Status == domain.GoalStatusCanceled {
			return store.Mutation{}, ppr.ErrGoalCanceled
		}
		launch, err := ppr.ResubmitLaunch(goal, launches, launchID, ppr.LaunchInput{
			Value:       draft.Value,
			Note:        draft.Note,
			EvidenceURL: draft.EvidenceURL,
			Actor:       actorLabel(actor),
			Now:         s.now(),
		})
		if err != nil {
			return store.Mutation{}, err
		}
		return store.Mutation{Launch: &launch, Derived: s.derive(goal, ppr.Apply(launches, launch))}, nil
	})
	if err != nil {
		return LaunchResult{}, err
	}
	s.metrics.LaunchTransition("resubmit")
	s.logger.Info("launch resubmitted", slog.Int64("goal_id", goalID), slog.String("launch_id", launchID.String()))
	return LaunchResult{Goal: mutated.Goal, Launch: *mutated.Launch}, nil
}

// EvaluateLaunch applies an evaluator decision. Approving on a canceled goal
// is allowed; the goal stays canceled.
func (s *Service) EvaluateLaunch(ctx context.Context, actor domain.User, evaluation Evaluation) (LaunchResult, error) {
	mutated, err := s.mutate(ctx, "evaluate_launch", evaluation.GoalID, func(goal domain.Goal, launches []domain.Launch) (store.Mutation, error) {
		if err := canEvaluate(actor, goal); err != nil {
			return store.Mutation{}, err
		}
		var (
			launch domain.Launch
			err    error
		)
		now := s.now()
		switch evaluation.Action {
		case ActionApprove:
			launch, err = ppr.ApproveLaunch(launches, evaluation.LaunchID, actorLabel(actor), now)
		case ActionReject:
			launch, err = ppr.RejectLaunch(launches, evaluation.LaunchID, evaluation.RejectionReason, actorLabel(actor), now)
		case ActionReopen:
			launch, err = ppr.ReopenLaunch(launches, evaluation.LaunchID, actorLabel(actor), now)
		default:
			err = &ppr.ValidationError{Field: "action", Reason: "must be approve, reject or reopen"}
		}
		if err != nil {
			return store.Mutation{}, err
		}
		return store.Mutation{Launch: &launch, Derived: s.derive(goal, ppr.Apply(launches, launch))}, nil
	})
	if err != nil {
		return LaunchResult{}, err
	}
	s.metrics.LaunchTransition(string(evaluation.Action))
	s.logger.Info("launch evaluated",
		slog.Int64("goal_id", evaluation.GoalID),
		slog.String("launch_id", evaluation.LaunchID.String()),
		slog.String("action", string(evaluation.Action)),
		slog.String("goal_status", string(mutated.Goal.Status)),
	)
	return LaunchResult{Goal: mutated.Goal, Launch: *mutated.Launch}, nil
}

// PendingLaunches is the evaluator queue, scoped to the evaluator's sector.
func (s *Service) PendingLaunches(ctx context.Context, actor domain.User) ([]store.PendingLaunch, error) {
	if !actor.HasRole(domain.RoleEvaluator, domain.RoleSuperuser) {
		return nil, fmt.Errorf("%w: the pending queue is for evaluators", ErrForbidden)
	}
	sectorID := actor.SectorID
	if actor.HasRole(domain.RoleSuperuser) {
		sectorID = 0
	}
	return s.store.ListPendingLaunches(ctx, sectorID)
}
