package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ppr/internal/domain"
	"ppr/internal/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write demo sectors, users, goals and launches",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()
		return seedDemo(cmd.Context(), a)
	},
}

// seedDemo writes the demo organisation, then drives a few launches through
// the service so the goals carry derived attainment.
func seedDemo(ctx context.Context, a *app) error {
	seeded, err := a.store.SeedDemo(ctx, time.Now().In(a.cfg.Location()).Year())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	launcher, err := a.store.GetUser(ctx, seeded.LauncherID)
	if err != nil {
		return err
	}
	evaluator, err := a.store.GetUser(ctx, seeded.EvaluatorID)
	if err != nil {
		return err
	}

	// Response time of 12 lands between the 5 and 15 tiers: 50%.
	approved, err := a.service.CreateLaunch(ctx, launcher, seeded.GoalIDs[0], service.LaunchDraft{
		Value:       domain.NumberValue(12),
		Note:        "January average",
		EvidenceURL: "https://files.ppr.local/ops/jan.pdf",
	})
	if err != nil {
		return fmt.Errorf("seed launch: %w", err)
	}
	if _, err := a.service.EvaluateLaunch(ctx, evaluator, service.Evaluation{
		GoalID:   seeded.GoalIDs[0],
		LaunchID: approved.Launch.ID,
		Action:   service.ActionApprove,
	}); err != nil {
		return fmt.Errorf("seed approval: %w", err)
	}
	if _, err := a.service.CreateLaunch(ctx, launcher, seeded.GoalIDs[1], service.LaunchDraft{
		Value:       domain.NumberValue(90000),
		EvidenceURL: "https://files.ppr.local/ops/q1.xlsx",
	}); err != nil {
		return fmt.Errorf("seed launch: %w", err)
	}

	a.logger.Info("seed data created",
		slog.Int("goals", len(seeded.GoalIDs)),
		slog.Int64("manager_id", seeded.ManagerID),
		slog.Int64("launcher_id", seeded.LauncherID),
		slog.Int64("evaluator_id", seeded.EvaluatorID),
	)
	return nil
}
