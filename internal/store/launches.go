package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ppr/internal/domain"
	"ppr/internal/ppr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const launchColumns = `l.id, l.goal_id, l.seq, l.value, l.note, l.evidence_url, l.status, l.rejection_reason, l.updated_by, l.created_at, l.updated_at`

// Mutation is what a MutateFunc asks the store to persist. Launch is inserted
// when its ID is uuid.Nil and updated otherwise.
type Mutation struct {
	Launch  *domain.Launch
	Derived domain.Derived
}

// MutateFunc sees the locked goal with all of its launches.
type MutateFunc func(goal domain.Goal, launches []domain.Launch) (Mutation, error)

type Mutated struct {
	Goal   domain.Goal
	Launch *domain.Launch
}

// MutateGoal serializes every write that feeds the derived goal fields. The
// goal row is locked, fn computes the change, and the launch write plus the
// derived fields commit together. A mutation that changes nothing leaves the
// version untouched.
func (s *Store) MutateGoal(ctx context.Context, goalID int64, fn MutateFunc) (Mutated, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Mutated{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	goal, err := scanGoal(tx.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals g WHERE g.id=$1 FOR UPDATE`, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Mutated{}, goalNotFound(goalID)
		}
		return Mutated{}, err
	}
	launches, err := listLaunches(ctx, tx, goalID)
	if err != nil {
		return Mutated{}, err
	}

	mutation, err := fn(goal, launches)
	if err != nil {
		return Mutated{}, err
	}
	if mutation.Launch == nil && mutation.Derived == goal.Derived() {
		return Mutated{Goal: goal}, tx.Commit(ctx)
	}

	var launch *domain.Launch
	if mutation.Launch != nil {
		saved := *mutation.Launch
		saved.GoalID = goalID
		if saved.ID == uuid.Nil {
			saved.ID = uuid.New()
			err = insertLaunch(ctx, tx, &saved)
		} else {
			err = updateLaunch(ctx, tx, &saved)
		}
		if err != nil {
			return Mutated{}, err
		}
		launch = &saved
	}

	err = tx.QueryRow(ctx, `
		UPDATE goals SET status=$2, earned_attainment=$3, task_progress=$4, version=version+1, updated_at=now()
		WHERE id=$1
		RETURNING version, updated_at`,
		goalID, mutation.Derived.Status, mutation.Derived.EarnedAttainment, mutation.Derived.TaskProgress,
	).Scan(&goal.Version, &goal.UpdatedAt)
	if err != nil {
		return Mutated{}, err
	}
	goal.Status = mutation.Derived.Status
	goal.EarnedAttainment = mutation.Derived.EarnedAttainment
	goal.TaskProgress = mutation.Derived.TaskProgress

	if err := tx.Commit(ctx); err != nil {
		return Mutated{}, err
	}
	return Mutated{Goal: goal, Launch: launch}, nil
}

func (s *Store) ListLaunches(ctx context.Context, goalID int64) ([]domain.Launch, error) {
	return listLaunches(ctx, s.DB, goalID)
}

// ListPendingLaunches is the evaluator queue. A zero sectorID lists every sector.
func (s *Store) ListPendingLaunches(ctx context.Context, sectorID int64) ([]PendingLaunch, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+launchColumns+`, g.title, g.sector_id
		FROM launches l
		JOIN goals g ON g.id = l.goal_id
		WHERE l.status = 'pending' AND g.status <> 'canceled' AND ($1 = 0 OR g.sector_id = $1)
		ORDER BY l.created_at, l.seq`, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PendingLaunch, 0)
	for rows.Next() {
		var item PendingLaunch
		var value []byte
		l := &item.Launch
		if err := rows.Scan(&l.ID, &l.GoalID, &l.Seq, &value, &l.Note, &l.EvidenceURL, &l.Status, &l.RejectionReason,
			&l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt, &item.GoalTitle, &item.SectorID); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(value, &l.Value); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listLaunches(ctx context.Context, q querier, goalID int64) ([]domain.Launch, error) {
	rows, err := q.Query(ctx, `SELECT `+launchColumns+` FROM launches l WHERE l.goal_id=$1 ORDER BY l.seq`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	launches := make([]domain.Launch, 0)
	for rows.Next() {
		var launch domain.Launch
		var value []byte
		if err := rows.Scan(&launch.ID, &launch.GoalID, &launch.Seq, &value, &launch.Note, &launch.EvidenceURL, &launch.Status,
			&launch.RejectionReason, &launch.UpdatedBy, &launch.CreatedAt, &launch.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(value, &launch.Value); err != nil {
			return nil, fmt.Errorf("launch %s value: %w", launch.ID, err)
		}
		launches = append(launches, launch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return launches, nil
}

func insertLaunch(ctx context.Context, tx pgx.Tx, launch *domain.Launch) error {
	value, err := json.Marshal(launch.Value)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO launches (id, goal_id, seq, value, note, evidence_url, status, rejection_reason, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		launch.ID, launch.GoalID, launch.Seq, value, launch.Note, launch.EvidenceURL, launch.Status,
		launch.RejectionReason, launch.UpdatedBy,
	).Scan(&launch.CreatedAt, &launch.UpdatedAt)
}

func updateLaunch(ctx context.Context, tx pgx.Tx, launch *domain.Launch) error {
	value, err := json.Marshal(launch.Value)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		UPDATE launches SET value=$3, note=$4, evidence_url=$5, status=$6, rejection_reason=$7, updated_by=$8, updated_at=now()
		WHERE id=$1 AND goal_id=$2
		RETURNING updated_at`,
		launch.ID, launch.GoalID, value, launch.Note, launch.EvidenceURL, launch.Status, launch.RejectionReason, launch.UpdatedBy,
	).Scan(&launch.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("launch %s: %w (%w)", launch.ID, ppr.ErrLaunchNotFound, ErrNotFound)
	}
	return err
}
