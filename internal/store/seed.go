package store

import (
	"context"
	"fmt"
	"time"

	"ppr/internal/domain"
)

type Seeded struct {
	SectorIDs   []int64
	AdminID     int64
	ManagerID   int64
	EvaluatorID int64
	LauncherID  int64
	GoalIDs     []int64
}

// SeedDemo writes a small demo organisation: two sectors, one user per role
// and three goals per sector covering both directions and a categorical goal.
// Re-running it upserts sectors and users but adds fresh goals.
func (s *Store) SeedDemo(ctx context.Context, year int) (Seeded, error) {
	var seeded Seeded
	sectors := []SectorInput{
		{Acronym: "OPS", Name: "Operations"},
		{Acronym: "FIN", Name: "Finance"},
	}
	for _, sector := range sectors {
		id, err := s.CreateSector(ctx, sector)
		if err != nil {
			return Seeded{}, err
		}
		seeded.SectorIDs = append(seeded.SectorIDs, id)
	}

	users := []struct {
		input  UserInput
		target *int64
	}{
		{UserInput{Name: "Admin", Email: "admin@ppr.local", Roles: []domain.Role{domain.RoleAdmin}}, &seeded.AdminID},
		{UserInput{Name: "Manager", Email: "manager@ppr.local", Roles: []domain.Role{domain.RoleManager}, SectorID: seeded.SectorIDs[0]}, &seeded.ManagerID},
		{UserInput{Name: "Evaluator", Email: "evaluator@ppr.local", Roles: []domain.Role{domain.RoleEvaluator}, SectorID: seeded.SectorIDs[0]}, &seeded.EvaluatorID},
		{UserInput{Name: "Collaborator", Email: "collaborator@ppr.local", Roles: []domain.Role{domain.RoleCollaborator}, SectorID: seeded.SectorIDs[0]}, &seeded.LauncherID},
	}
	for _, u := range users {
		id, err := s.CreateUser(ctx, u.input)
		if err != nil {
			return Seeded{}, err
		}
		*u.target = id
	}

	deadline := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, sectorID := range seeded.SectorIDs {
		goals := []GoalInput{
			{
				Title:     fmt.Sprintf("Reduce average ticket response time (sector %d)", sectorID),
				Priority:  domain.PriorityHigh,
				Frequency: domain.FrequencyMonthly,
				InputType: domain.InputNumeric,
				PPRWeight: 40,
				Levels: []domain.AchievementLevel{
					{TargetValue: domain.NumberValue(5), Percentage: 100},
					{TargetValue: domain.NumberValue(15), Percentage: 50},
					{TargetValue: domain.NumberValue(30), Percentage: 20},
				},
			},
			{
				Title:     fmt.Sprintf("Grow recurring revenue (sector %d)", sectorID),
				Priority:  domain.PriorityMedium,
				Frequency: domain.FrequencyQuarterly,
				InputType: domain.InputNumeric,
				PPRWeight: 40,
				Levels: []domain.AchievementLevel{
					{TargetValue: domain.NumberValue(80000), Percentage: 50},
					{TargetValue: domain.NumberValue(100000), Percentage: 100},
				},
			},
			{
				Title:     fmt.Sprintf("Publish the annual audit (sector %d)", sectorID),
				Priority:  domain.PriorityLow,
				Frequency: domain.FrequencySemiannual,
				InputType: domain.InputCategorical,
				PPRWeight: 20,
				Levels: []domain.AchievementLevel{
					{TargetValue: domain.TextValue("Sim"), Percentage: 100},
					{TargetValue: domain.TextValue("Não"), Percentage: 0},
				},
			},
		}
		for _, goal := range goals {
			goal.SectorID = sectorID
			goal.Description = "Demo goal."
			goal.Deadline = deadline
			goal.CreatorID = seeded.ManagerID
			goal.ResponsibleID = seeded.ManagerID
			goal.LauncherID = seeded.LauncherID
			id, err := s.CreateGoal(ctx, goal)
			if err != nil {
				return Seeded{}, err
			}
			seeded.GoalIDs = append(seeded.GoalIDs, id)
		}
	}
	return seeded, nil
}
