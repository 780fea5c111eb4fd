package main

import (
	"errors"
	"fmt"

	"ppr/internal/auth"
	"ppr/internal/domain"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, closer, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required to mint tokens")
		}

		userID, _ := cmd.Flags().GetInt64("user")
		if userID <= 0 {
			return errors.New("--user is required")
		}
		name, _ := cmd.Flags().GetString("name")
		sectorID, _ := cmd.Flags().GetInt64("sector")
		rawRoles, _ := cmd.Flags().GetStringSlice("role")

		roles := make([]domain.Role, 0, len(rawRoles))
		for _, raw := range rawRoles {
			role := domain.ParseRole(raw)
			if !domain.ValidRole(role) {
				return fmt.Errorf("unknown role %q", raw)
			}
			roles = append(roles, role)
		}

		token, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(domain.User{
			ID:       userID,
			Name:     name,
			SectorID: sectorID,
			Roles:    roles,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64("user", 0, "user id the token is issued for")
	tokenCmd.Flags().String("name", "", "display name recorded on launches")
	tokenCmd.Flags().Int64("sector", 0, "sector id of the user")
	tokenCmd.Flags().StringSlice("role", []string{string(domain.RoleCollaborator)}, "roles, repeatable")
}
