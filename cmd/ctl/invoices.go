package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/freightdesk/internal/app"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Invoice maintenance",
}

var markOverdueCmd = &cobra.Command{
	Use:   "mark-overdue",
	Short: "Flag pending and partially paid invoices past their due date",
	Example: `  # Sweep as of now
  freightdesk-ctl invoices mark-overdue

  # Sweep as of a given day
  freightdesk-ctl invoices mark-overdue --as-of 2026-03-31`,
	Args: cobra.NoArgs,
	RunE: runMarkOverdue,
}

func init() {
	markOverdueCmd.Flags().String("as-of", "", "Reference date (YYYY-MM-DD, default: now)")

	invoicesCmd.AddCommand(markOverdueCmd)
	rootCmd.AddCommand(invoicesCmd)
}

func runMarkOverdue(cmd *cobra.Command, _ []string) error {
	asOfStr, _ := cmd.Flags().GetString("as-of")

	asOf := time.Now()
	if asOfStr != "" {
		parsed, err := time.Parse(time.DateOnly, asOfStr)
		if err != nil {
			return fmt.Errorf("invalid --as-of date, use YYYY-MM-DD: %w", err)
		}

		asOf = parsed
	}

	return withApp(cmd.Context(), func(_ *env, a *app.App) error {
		n, err := a.Invoices.MarkOverdue(cmd.Context(), asOf)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d invoice(s) marked overdue as of %s\n", n, asOf.Format(time.DateOnly))

		return nil
	})
}
