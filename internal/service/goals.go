package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"ppr/internal/domain"
	"ppr/internal/ppr"
	"ppr/internal/store"
)

type GoalDraft struct {
	SectorID      int64
	Title         string
	Description   string
	Priority      domain.Priority
	Deadline      time.Time
	Frequency     domain.Frequency
	InputType     domain.InputType
	Levels        []domain.AchievementLevel
	PPRWeight     float64
	ResponsibleID int64
	LauncherID    int64
}

type GoalDefinitionUpdate struct {
	GoalID      int64
	Description string
	Levels      []domain.AchievementLevel
	Version     int64
}

type CreatedGoal struct {
	Goal    domain.Goal
	Weights SectorWeights
}

type GoalDetail struct {
	Goal     domain.Goal
	Launches []domain.Launch
}

type GoalWeight struct {
	GoalID    int64
	Title     string
	PPRWeight float64
	Status    domain.GoalStatus
}

// SectorWeights sums pprWeight over a sector's live goals. The engine trusts
// each weight on its own, so this is the only place an over-allocation shows.
type SectorWeights struct {
	SectorID      int64
	Total         float64
	OverAllocated bool
	Goals         []GoalWeight
}

func (s *Service) CreateGoal(ctx context.Context, actor domain.User, draft GoalDraft) (CreatedGoal, error) {
	if !actor.HasRole(domain.RoleManager, domain.RoleAdmin, domain.RoleSuperuser) {
		return CreatedGoal{}, fmt.Errorf("%w: creating goals needs a manager", ErrForbidden)
	}
	if !actor.HasRole(domain.RoleAdmin, domain.RoleSuperuser) && draft.SectorID != actor.SectorID {
		return CreatedGoal{}, fmt.Errorf("%w: managers create goals in their own sector", ErrForbidden)
	}
	if draft.Priority == "" {
		draft.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(draft.Priority) {
		return CreatedGoal{}, &ppr.ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	if draft.LauncherID == 0 {
		return CreatedGoal{}, &ppr.ValidationError{Field: "launcher_id", Reason: "required"}
	}
	if draft.ResponsibleID == 0 {
		draft.ResponsibleID = actor.ID
	}
	goal := domain.Goal{
		SectorID:  draft.SectorID,
		Title:     strings.TrimSpace(draft.Title),
		Frequency: domain.ParseFrequency(string(draft.Frequency)),
		InputType: domain.ParseInputType(string(draft.InputType)),
		Levels:    draft.Levels,
		PPRWeight: draft.PPRWeight,
	}
	if err := ppr.ValidateDefinition(goal); err != nil {
		return CreatedGoal{}, err
	}
	if _, err := s.store.GetSector(ctx, draft.SectorID); err != nil {
		return CreatedGoal{}, err
	}

	id, err := s.store.CreateGoal(ctx, store.GoalInput{
		SectorID:      goal.SectorID,
		Title:         goal.Title,
		Description:   strings.TrimSpace(draft.Description),
		Priority:      draft.Priority,
		Deadline:      draft.Deadline,
		Frequency:     goal.Frequency,
		InputType:     goal.InputType,
		Levels:        goal.Levels,
		PPRWeight:     goal.PPRWeight,
		CreatorID:     actor.ID,
		ResponsibleID: draft.ResponsibleID,
		LauncherID:    draft.LauncherID,
	})
	if err != nil {
		return CreatedGoal{}, err
	}
	created, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return CreatedGoal{}, err
	}
	weights, err := s.SectorWeights(ctx, created.SectorID)
	if err != nil {
		return CreatedGoal{}, err
	}
	if weights.OverAllocated {
		s.logger.Warn("sector weights exceed 100",
			slog.Int64("sector_id", created.SectorID),
			slog.Float64("total", weights.Total),
		)
	}
	s.logger.Info("goal created", slog.Int64("goal_id", id), slog.Int64("sector_id", created.SectorID))
	return CreatedGoal{Goal: created, Weights: weights}, nil
}

func (s *Service) GetGoal(ctx context.Context, goalID int64) (GoalDetail, error) {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return GoalDetail{}, err
	}
	launches, err := s.store.ListLaunches(ctx, goalID)
	if err != nil {
		return GoalDetail{}, err
	}
	return GoalDetail{Goal: goal, Launches: launches}, nil
}

func (s *Service) ListLaunches(ctx context.Context, goalID int64) ([]domain.Launch, error) {
	if _, err := s.store.GetGoal(ctx, goalID); err != nil {
		return nil, err
	}
	return s.store.ListLaunches(ctx, goalID)
}

// ListGoals resolves a named view for the actor. Sector-scoped views use the
// actor's own sector; admins and superusers see every sector in the pending view.
func (s *Service) ListGoals(ctx context.Context, actor domain.User, view string) ([]domain.Goal, error) {
	filter := store.GoalFilter{View: store.GoalView(view), UserID: actor.ID, SectorID: actor.SectorID}
	switch filter.View {
	case store.ViewResponsible, store.ViewLauncher, store.ViewCreated:
	case store.ViewSector:
		if actor.SectorID == 0 {
			return nil, &ppr.ValidationError{Field: "view", Reason: "actor has no sector"}
		}
	case store.ViewPending:
		if actor.HasRole(domain.RoleAdmin, domain.RoleSuperuser) {
			filter.SectorID = 0
		}
	case "":
		if !actor.HasRole(domain.RoleAdmin, domain.RoleSuperuser) {
			filter.View = store.ViewResponsible
		}
	default:
		return nil, &ppr.ValidationError{Field: "view", Reason: "unknown view " + view}
	}
	return s.store.ListGoals(ctx, filter)
}

// UpdateGoalDefinition edits description and levels of a goal that has not
// received any launch yet.
func (s *Service) UpdateGoalDefinition(ctx context.Context, actor domain.User, update GoalDefinitionUpdate) (domain.Goal, error) {
	goal, err := s.store.GetGoal(ctx, update.GoalID)
	if err != nil {
		return domain.Goal{}, err
	}
	if goal.CreatorID != actor.ID && !actor.HasRole(domain.RoleAdmin, domain.RoleSuperuser) {
		return domain.Goal{}, fmt.Errorf("%w: only the creator edits goal %d", ErrForbidden, goal.ID)
	}
	if goal.Status != domain.GoalStatusPending {
		return domain.Goal{}, fmt.Errorf("%w: goal %d is %s", ppr.ErrGoalNotEditable, goal.ID, goal.Status)
	}
	if err := ppr.ValidateLevels(goal.InputType, update.Levels); err != nil {
		return domain.Goal{}, err
	}
	if _, err := s.store.UpdateGoalDefinition(ctx, store.GoalDefinitionInput{
		ID:          goal.ID,
		Description: strings.TrimSpace(update.Description),
		Levels:      update.Levels,
		Version:     update.Version,
	}); err != nil {
		return domain.Goal{}, err
	}
	return s.store.GetGoal(ctx, goal.ID)
}

// CancelGoal is terminal. Launches are kept and attainment still reflects the
// approved ones.
func (s *Service) CancelGoal(ctx context.Context, actor domain.User, goalID int64) (domain.Goal, error) {
	mutated, err := s.mutate(ctx, "cancel", goalID, func(goal domain.Goal, launches []domain.Launch) (store.Mutation, error) {
		if goal.CreatorID != actor.ID && !actor.HasRole(domain.RoleAdmin, domain.RoleSuperuser) {
			return store.Mutation{}, fmt.Errorf("%w: only the creator cancels goal %d", ErrForbidden, goal.ID)
		}
		goal.Status = domain.GoalStatusCanceled
		return store.Mutation{Derived: s.derive(goal, launches)}, nil
	})
	if err != nil {
		return domain.Goal{}, err
	}
	s.logger.Info("goal canceled", slog.Int64("goal_id", goalID), slog.Int64("actor_id", actor.ID))
	return mutated.Goal, nil
}

func (s *Service) SectorWeights(ctx context.Context, sectorID int64) (SectorWeights, error) {
	goals, err := s.store.ListGoals(ctx, store.GoalFilter{View: store.ViewSector, SectorID: sectorID})
	if err != nil {
		return SectorWeights{}, err
	}
	weights := SectorWeights{SectorID: sectorID, Goals: make([]GoalWeight, 0, len(goals))}
	for _, goal := range goals {
		if goal.Status == domain.GoalStatusCanceled {
			continue
		}
		weights.Total += goal.PPRWeight
		weights.Goals = append(weights.Goals, GoalWeight{GoalID: goal.ID, Title: goal.Title, PPRWeight: goal.PPRWeight, Status: goal.Status})
	}
	weights.Total = math.Round(weights.Total*100) / 100
	weights.OverAllocated = weights.Total > 100
	return weights, nil
}
