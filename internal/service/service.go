package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"ppr/internal/domain"
	"ppr/internal/metrics"
	"ppr/internal/ppr"
	"ppr/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var ErrForbidden = errors.New("forbidden")

type Store interface {
	CreateGoal(ctx context.Context, input store.GoalInput) (int64, error)
	GetGoal(ctx context.Context, id int64) (domain.Goal, error)
	ListGoals(ctx context.Context, filter store.GoalFilter) ([]domain.Goal, error)
	ListGoalIDs(ctx context.Context) ([]int64, error)
	UpdateGoalDefinition(ctx context.Context, input store.GoalDefinitionInput) (int64, error)
	MutateGoal(ctx context.Context, goalID int64, fn store.MutateFunc) (store.Mutated, error)
	ListLaunches(ctx context.Context, goalID int64) ([]domain.Launch, error)
	ListPendingLaunches(ctx context.Context, sectorID int64) ([]store.PendingLaunch, error)
	GetSector(ctx context.Context, id int64) (domain.Sector, error)
}

type Service struct {
	store       Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	now         func() time.Time
	concurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithConcurrency bounds how many goals RecomputeAll evaluates at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("ppr"),
		now:         time.Now,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate runs fn under the goal lock inside a span named after the operation.
func (s *Service) mutate(ctx context.Context, op string, goalID int64, fn store.MutateFunc) (store.Mutated, error) {
	ctx, span := s.tracer.Start(ctx, "ppr."+op, trace.WithAttributes(attribute.Int64("goal.id", goalID)))
	defer span.End()

	mutated, err := s.store.MutateGoal(ctx, goalID, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return store.Mutated{}, err
	}
	span.SetAttributes(
		attribute.String("goal.status", string(mutated.Goal.Status)),
		attribute.Float64("goal.earned_attainment", mutated.Goal.EarnedAttainment),
	)
	return mutated, nil
}

// derive evaluates the goal and reports configuration warnings. The warnings
// never fail the write; the zeroed result is still persisted.
func (s *Service) derive(goal domain.Goal, launches []domain.Launch) domain.Derived {
	result := ppr.Evaluate(goal, launches)
	for _, warning := range result.Warnings {
		s.logger.Warn("goal configuration problem",
			slog.Int64("goal_id", goal.ID),
			slog.String("error", warning.Error()),
		)
		s.metrics.ConfigurationWarning()
	}
	return result.Derived
}

func actorLabel(actor domain.User) string {
	if actor.Name != "" {
		return actor.Name
	}
	return "user:" + strconv.FormatInt(actor.ID, 10)
}
