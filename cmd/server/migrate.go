package main

import (
	"fmt"
	"log/slog"

	"ppr/internal/store"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Apply or roll back database migrations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closer, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		dir := cfg.Database.MigrationsDir
		if dir == "" {
			if dir, err = store.MigrationsDir(); err != nil {
				return err
			}
		}
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		switch direction {
		case "up":
			err = store.Migrate(cfg.Database.URL, dir)
		case "down":
			steps, _ := cmd.Flags().GetInt("steps")
			err = store.MigrateDown(cfg.Database.URL, dir, steps)
		default:
			return fmt.Errorf("unknown direction %q", direction)
		}
		if err != nil {
			return err
		}
		logger.Info("migrations applied", slog.String("direction", direction))
		return nil
	},
}

func init() {
	migrateCmd.Flags().Int("steps", 1, "number of migrations to roll back")
}
