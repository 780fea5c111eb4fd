package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ppr/internal/domain"
	"ppr/internal/ppr"

	"github.com/jackc/pgx/v5"
)

const goalColumns = `g.id, g.sector_id, g.title, g.description, g.priority, g.deadline, g.frequency, g.input_type, g.levels,
	g.ppr_weight, g.status, g.earned_attainment, g.task_progress, g.creator_id, g.responsible_id, g.launcher_id,
	g.version, g.created_at, g.updated_at`

func (s *Store) CreateGoal(ctx context.Context, input GoalInput) (int64, error) {
	levels, err := json.Marshal(input.Levels)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.DB.QueryRow(ctx, `
		INSERT INTO goals (sector_id, title, description, priority, deadline, frequency, input_type, levels, ppr_weight,
		                   creator_id, responsible_id, launcher_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`,
		input.SectorID, input.Title, input.Description, input.Priority, nullableDate(input.Deadline), input.Frequency,
		input.InputType, levels, input.PPRWeight, input.CreatorID, input.ResponsibleID, input.LauncherID,
	).Scan(&id)
	return id, err
}

func (s *Store) GetGoal(ctx context.Context, id int64) (domain.Goal, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals g WHERE g.id=$1`, id)
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Goal{}, goalNotFound(id)
		}
		return domain.Goal{}, err
	}
	return goal, nil
}

func (s *Store) ListGoals(ctx context.Context, filter GoalFilter) ([]domain.Goal, error) {
	var where string
	var args []any
	switch filter.View {
	case ViewResponsible:
		where, args = `g.responsible_id=$1`, []any{filter.UserID}
	case ViewLauncher:
		where, args = `g.launcher_id=$1 AND g.status IN ('pending', 'in_progress')`, []any{filter.UserID}
	case ViewCreated:
		where, args = `g.creator_id=$1`, []any{filter.UserID}
	case ViewSector:
		where, args = `g.sector_id=$1`, []any{filter.SectorID}
	case ViewPending:
		where = `g.status IN ('pending', 'in_progress') AND ($1 = 0 OR g.sector_id = $1)`
		args = []any{filter.SectorID}
	case "":
		where = `TRUE`
	default:
		return nil, fmt.Errorf("unknown goal view %q", filter.View)
	}

	rows, err := s.DB.Query(ctx, `SELECT `+goalColumns+` FROM goals g WHERE `+where+` ORDER BY g.deadline NULLS LAST, g.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]domain.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *Store) ListGoalIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM goals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateGoalDefinition rewrites description and levels when the caller saw
// the latest version. Derived fields are left for the next recompute.
func (s *Store) UpdateGoalDefinition(ctx context.Context, input GoalDefinitionInput) (int64, error) {
	levels, err := json.Marshal(input.Levels)
	if err != nil {
		return 0, err
	}
	var version int64
	err = s.DB.QueryRow(ctx, `
		UPDATE goals SET description=$2, levels=$3, version=version+1, updated_at=now()
		WHERE id=$1 AND version=$4 AND status='pending'
		RETURNING version`, input.ID, input.Description, levels, input.Version).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	var status domain.GoalStatus
	err = s.DB.QueryRow(ctx, `SELECT status FROM goals WHERE id=$1`, input.ID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, goalNotFound(input.ID)
	}
	if err != nil {
		return 0, err
	}
	if status != domain.GoalStatusPending {
		return 0, fmt.Errorf("goal %d is %s: %w", input.ID, status, ppr.ErrGoalNotEditable)
	}
	return 0, fmt.Errorf("goal %d at version %d: %w", input.ID, input.Version, ErrVersionConflict)
}

// goalNotFound matches both the store and the engine sentinels.
func goalNotFound(id int64) error {
	return fmt.Errorf("goal %d: %w (%w)", id, ppr.ErrGoalNotFound, ErrNotFound)
}

func scanGoal(row pgx.Row) (domain.Goal, error) {
	var goal domain.Goal
	var deadline *time.Time
	var levels []byte
	if err := row.Scan(&goal.ID, &goal.SectorID, &goal.Title, &goal.Description, &goal.Priority, &deadline, &goal.Frequency,
		&goal.InputType, &levels, &goal.PPRWeight, &goal.Status, &goal.EarnedAttainment, &goal.TaskProgress,
		&goal.CreatorID, &goal.ResponsibleID, &goal.LauncherID, &goal.Version, &goal.CreatedAt, &goal.UpdatedAt); err != nil {
		return domain.Goal{}, err
	}
	if deadline != nil {
		goal.Deadline = *deadline
	}
	if err := json.Unmarshal(levels, &goal.Levels); err != nil {
		return domain.Goal{}, fmt.Errorf("goal %d levels: %w", goal.ID, err)
	}
	return goal, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
