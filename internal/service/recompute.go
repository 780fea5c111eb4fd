package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"ppr/internal/domain"
	"ppr/internal/store"

	"golang.org/x/sync/errgroup"
)

type RecomputeSummary struct {
	Total   int
	Updated int
	Failed  int
}

// RecomputeGoal re-derives the goal from its launches. It is idempotent: a
// second call on unchanged data writes nothing.
func (s *Service) RecomputeGoal(ctx context.Context, goalID int64) (domain.Goal, bool, error) {
	var before domain.Derived
	mutated, err := s.mutate(ctx, "recompute", goalID, func(goal domain.Goal, launches []domain.Launch) (store.Mutation, error) {
		before = goal.Derived()
		return store.Mutation{Derived: s.derive(goal, launches)}, nil
	})
	if err != nil {
		s.metrics.RecomputeDone("failed")
		return domain.Goal{}, false, err
	}
	changed := mutated.Goal.Derived() != before
	if changed {
		s.metrics.RecomputeDone("updated")
		s.logger.Info("goal recomputed",
			slog.Int64("goal_id", goalID),
			slog.String("status", string(mutated.Goal.Status)),
			slog.Float64("earned_attainment", mutated.Goal.EarnedAttainment),
			slog.Int("task_progress", mutated.Goal.TaskProgress),
		)
	} else {
		s.metrics.RecomputeDone("unchanged")
	}
	return mutated.Goal, changed, nil
}

// RecomputeAll walks every goal with bounded parallelism. A failing goal is
// logged and counted but does not stop the others; only context cancellation
// aborts the batch.
func (s *Service) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	ids, err := s.store.ListGoalIDs(ctx)
	if err != nil {
		return RecomputeSummary{}, err
	}
	var updated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, changed, err := s.RecomputeGoal(gctx, id)
			if err != nil {
				failed.Add(1)
				s.logger.Error("recompute failed", slog.Int64("goal_id", id), slog.String("error", err.Error()))
				return nil
			}
			if changed {
				updated.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	summary := RecomputeSummary{Total: len(ids), Updated: int(updated.Load()), Failed: int(failed.Load())}
	s.logger.Info("recompute finished",
		slog.Int("total", summary.Total),
		slog.Int("updated", summary.Updated),
		slog.Int("failed", summary.Failed),
	)
	return summary, err
}
