package ppr

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppr/internal/domain"
)

func newID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

var numericGoal = domain.Goal{ID: 3, Frequency: domain.FrequencySemiannual, InputType: domain.InputNumeric, Status: domain.GoalStatusInProgress}

func withID(launch domain.Launch, n int) domain.Launch {
	launch.ID = newID(n)
	return launch
}

func TestCreateLaunchGuards(t *testing.T) {
	goal := domain.Goal{ID: 3, Frequency: domain.FrequencySemiannual, InputType: domain.InputNumeric, Status: domain.GoalStatusPending}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	launch, err := CreateLaunch(goal, nil, LaunchInput{Value: domain.NumberValue(4), Note: "  first  ", Actor: "ana", Now: now})
	require.NoError(t, err)
	assert.Equal(t, 1, launch.Seq)
	assert.Equal(t, int64(3), launch.GoalID)
	assert.Equal(t, domain.LaunchStatusPending, launch.Status)
	assert.Equal(t, "first", launch.Note)
	assert.Equal(t, "ana", launch.UpdatedBy)
	assert.Equal(t, now, launch.CreatedAt)

	_, err = CreateLaunch(goal, []domain.Launch{withID(launch, 1)}, LaunchInput{Value: domain.NumberValue(5)})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	_, err = CreateLaunch(goal, nil, LaunchInput{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "value", verr.Field)

	canceled := goal
	canceled.Status = domain.GoalStatusCanceled
	_, err = CreateLaunch(canceled, nil, LaunchInput{Value: domain.NumberValue(1)})
	assert.ErrorIs(t, err, ErrGoalCanceled)

	unknown := goal
	unknown.Frequency = "weekly"
	_, err = CreateLaunch(unknown, nil, LaunchInput{Value: domain.NumberValue(1)})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestLaunchValueMustBeFiniteOnNumericGoals(t *testing.T) {
	pendingGoal := numericGoal
	pendingGoal.Status = domain.GoalStatusPending
	previous := withID(rejected(1, domain.NumberValue(1)), 1)

	cases := []struct {
		name  string
		value domain.Value
	}{
		{name: "infinity", value: domain.TextValue("Infinity")},
		{name: "negative infinity", value: domain.TextValue("-Inf")},
		{name: "nan", value: domain.TextValue("NaN")},
		{name: "not a number", value: domain.TextValue("banana")},
		{name: "numeric infinity", value: domain.NumberValue(math.Inf(1))},
	}
	for _, tc := range cases {
		_, err := CreateLaunch(pendingGoal, nil, LaunchInput{Value: tc.value})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), tc.name)
		assert.Equal(t, "value", verr.Field, tc.name)

		_, err = ResubmitLaunch(numericGoal, []domain.Launch{previous}, newID(1), LaunchInput{Value: tc.value})
		require.True(t, errors.As(err, &verr), tc.name)
		assert.Equal(t, "value", verr.Field, tc.name)
	}

	launch, err := CreateLaunch(pendingGoal, nil, LaunchInput{Value: domain.TextValue(" 42.5 ")})
	require.NoError(t, err)
	assert.Equal(t, 1, launch.Seq)

	categorical := pendingGoal
	categorical.InputType = domain.InputCategorical
	_, err = CreateLaunch(categorical, nil, LaunchInput{Value: domain.TextValue("banana")})
	assert.NoError(t, err)
}

func TestCreateLaunchSeqFollowsMax(t *testing.T) {
	goal := domain.Goal{Frequency: domain.FrequencyMonthly, InputType: domain.InputCategorical, Status: domain.GoalStatusInProgress}
	launches := []domain.Launch{
		withID(pending(1, domain.NumberValue(1)), 1),
		withID(rejected(4, domain.NumberValue(1)), 4),
	}
	launch, err := CreateLaunch(goal, launches, LaunchInput{Value: domain.TextValue("x")})
	require.NoError(t, err)
	assert.Equal(t, 5, launch.Seq)
}

func TestLaunchTransitions(t *testing.T) {
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	launches := []domain.Launch{
		withID(pending(1, domain.NumberValue(1)), 1),
		withID(approved(2, domain.NumberValue(2)), 2),
		withID(rejected(3, domain.NumberValue(3)), 3),
	}

	cases := []struct {
		name   string
		run    func() (domain.Launch, error)
		err    error
		status domain.LaunchStatus
	}{
		{name: "approve pending", run: func() (domain.Launch, error) { return ApproveLaunch(launches, newID(1), "eva", now) }, status: domain.LaunchStatusApproved},
		{name: "approve approved", run: func() (domain.Launch, error) { return ApproveLaunch(launches, newID(2), "eva", now) }, err: ErrInvalidTransition},
		{name: "approve rejected", run: func() (domain.Launch, error) { return ApproveLaunch(launches, newID(3), "eva", now) }, err: ErrInvalidTransition},
		{name: "reject pending", run: func() (domain.Launch, error) { return RejectLaunch(launches, newID(1), "missing evidence", "eva", now) }, status: domain.LaunchStatusRejected},
		{name: "reject approved", run: func() (domain.Launch, error) { return RejectLaunch(launches, newID(2), "late", "eva", now) }, err: ErrInvalidTransition},
		{name: "reopen approved", run: func() (domain.Launch, error) { return ReopenLaunch(launches, newID(2), "eva", now) }, status: domain.LaunchStatusPending},
		{name: "reopen pending", run: func() (domain.Launch, error) { return ReopenLaunch(launches, newID(1), "eva", now) }, err: ErrInvalidTransition},
		{name: "resubmit rejected", run: func() (domain.Launch, error) {
			return ResubmitLaunch(numericGoal, launches, newID(3), LaunchInput{Value: domain.NumberValue(9), Actor: "leo", Now: now})
		}, status: domain.LaunchStatusPending},
		{name: "resubmit pending", run: func() (domain.Launch, error) {
			return ResubmitLaunch(numericGoal, launches, newID(1), LaunchInput{Value: domain.NumberValue(9)})
		}, err: ErrLaunchLocked},
		{name: "resubmit approved", run: func() (domain.Launch, error) {
			return ResubmitLaunch(numericGoal, launches, newID(2), LaunchInput{Value: domain.NumberValue(9)})
		}, err: ErrLaunchLocked},
		{name: "unknown launch", run: func() (domain.Launch, error) { return ApproveLaunch(launches, newID(99), "eva", now) }, err: ErrLaunchNotFound},
	}
	for _, tc := range cases {
		got, err := tc.run()
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.name)
			continue
		}
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.status, got.Status, tc.name)
		assert.Equal(t, now, got.UpdatedAt, tc.name)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	launches := []domain.Launch{withID(pending(1, domain.NumberValue(1)), 1)}
	_, err := RejectLaunch(launches, newID(1), "   ", "eva", time.Now())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "rejection_reason", verr.Field)
}

func TestResubmitClearsReason(t *testing.T) {
	launch := withID(rejected(1, domain.NumberValue(1)), 1)
	launch.RejectionReason = "wrong unit"
	launch.EvidenceURL = "https://old"
	got, err := ResubmitLaunch(numericGoal, []domain.Launch{launch}, newID(1), LaunchInput{Value: domain.NumberValue(2), Note: "fixed"})
	require.NoError(t, err)
	assert.Empty(t, got.RejectionReason)
	assert.Equal(t, "https://old", got.EvidenceURL)
	assert.Equal(t, "fixed", got.Note)
	assert.Equal(t, 2.0, got.Value.Num)
}

func TestApplyReplacesBySeq(t *testing.T) {
	launches := []domain.Launch{pending(1, domain.NumberValue(1)), pending(2, domain.NumberValue(2))}
	updated := approved(2, domain.NumberValue(2))
	out := Apply(launches, updated)
	require.Len(t, out, 2)
	assert.Equal(t, domain.LaunchStatusApproved, out[1].Status)
	assert.Equal(t, domain.LaunchStatusPending, launches[1].Status)

	out = Apply(out, pending(3, domain.NumberValue(3)))
	assert.Len(t, out, 3)
}

func TestValidateDefinition(t *testing.T) {
	valid := domain.Goal{
		Title:     "Reduce response time",
		Frequency: domain.FrequencyMonthly,
		InputType: domain.InputNumeric,
		PPRWeight: 20,
		Levels:    numericLevels(5, 100, 15, 50),
	}
	require.NoError(t, ValidateDefinition(valid))

	cases := []struct {
		name   string
		mutate func(g *domain.Goal)
		field  string
	}{
		{name: "blank title", mutate: func(g *domain.Goal) { g.Title = " " }, field: "title"},
		{name: "unknown frequency", mutate: func(g *domain.Goal) { g.Frequency = "weekly" }, field: "frequency"},
		{name: "unknown input type", mutate: func(g *domain.Goal) { g.InputType = "boolean" }, field: "input_type"},
		{name: "weight over 100", mutate: func(g *domain.Goal) { g.PPRWeight = 101 }, field: "ppr_weight"},
		{name: "no levels", mutate: func(g *domain.Goal) { g.Levels = nil }, field: "levels"},
		{name: "percentage out of range", mutate: func(g *domain.Goal) { g.Levels = numericLevels(5, 120) }, field: "levels.percentage"},
		{name: "text target on numeric goal", mutate: func(g *domain.Goal) {
			g.Levels = []domain.AchievementLevel{{TargetValue: domain.TextValue("many"), Percentage: 100}}
		}, field: "levels.target_value"},
		{name: "nan target on numeric goal", mutate: func(g *domain.Goal) {
			g.Levels = []domain.AchievementLevel{{TargetValue: domain.TextValue("NaN"), Percentage: 100}}
		}, field: "levels.target_value"},
		{name: "infinite target on numeric goal", mutate: func(g *domain.Goal) {
			g.Levels = []domain.AchievementLevel{{TargetValue: domain.TextValue("Infinity"), Percentage: 100}}
		}, field: "levels.target_value"},
		{name: "duplicate categorical option", mutate: func(g *domain.Goal) {
			g.InputType = domain.InputCategorical
			g.Levels = []domain.AchievementLevel{
				{TargetValue: domain.TextValue("Sim"), Percentage: 100},
				{TargetValue: domain.TextValue("Sim"), Percentage: 0},
			}
		}, field: "levels.target_value"},
	}
	for _, tc := range cases {
		goal := valid
		tc.mutate(&goal)
		err := ValidateDefinition(goal)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), tc.name)
		assert.Equal(t, tc.field, verr.Field, tc.name)
	}
}
