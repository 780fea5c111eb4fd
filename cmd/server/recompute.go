package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Re-derive attainment, progress and status from stored launches",
	RunE: func(cmd *cobra.Command, args []string) error {
		goalID, _ := cmd.Flags().GetInt64("goal")
		all, _ := cmd.Flags().GetBool("all")
		if (goalID == 0) == !all {
			return errors.New("pass exactly one of --goal or --all")
		}

		a, err := newApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if all {
			summary, err := a.service.RecomputeAll(cmd.Context())
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return errors.New("some goals failed to recompute, see log")
			}
			return nil
		}
		goal, changed, err := a.service.RecomputeGoal(cmd.Context(), goalID)
		if err != nil {
			return err
		}
		a.logger.Info("goal recomputed",
			slog.Int64("goal_id", goal.ID),
			slog.Bool("changed", changed),
			slog.Float64("earned_attainment", goal.EarnedAttainment),
			slog.Int("task_progress", goal.TaskProgress),
			slog.String("status", string(goal.Status)),
		)
		return nil
	},
}

func init() {
	recomputeCmd.Flags().Int64("goal", 0, "goal id to recompute")
	recomputeCmd.Flags().Bool("all", false, "recompute every goal")
}
