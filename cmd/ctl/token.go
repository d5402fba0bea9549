package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an API bearer token",
	Long: `Signs a bearer token with AUTH_JWT_SECRET. For contractor tokens the
subject must be the contractor id, since contractors may only read their own
balance.`,
	Example: `  freightdesk-ctl token ops@example.com --role admin
  freightdesk-ctl token 6f1c0d1e-... --role contractor --ttl 720h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("role", string(middleware.RoleAdmin), "Token role (admin, contractor, driver)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	roleStr, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	role := middleware.Role(roleStr)
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", roleStr)
	}

	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	e, err := setup(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.close()

	if e.cfg.Auth.Secret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is not set")
	}

	auth := middleware.NewAuthenticator(e.cfg.Auth.Secret, false, e.log)

	token, err := auth.Issue(args[0], role, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}
