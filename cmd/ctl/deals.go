package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/freightdesk/internal/app"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Deal maintenance",
}

var regeneratePDFCmd = &cobra.Command{
	Use:   "regenerate-pdf <deal-id>",
	Short: "Render a deal's document again and store the new URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid deal id: %w", err)
		}

		return withApp(cmd.Context(), func(_ *env, a *app.App) error {
			d, err := a.Deals.RegeneratePDF(cmd.Context(), id)
			if err != nil {
				return err
			}

			url := "no document"
			if d.PDFURL != nil {
				url = *d.PDFURL
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.InvoiceNumber, url)

			return nil
		})
	},
}

func init() {
	dealsCmd.AddCommand(regeneratePDFCmd)
	rootCmd.AddCommand(dealsCmd)
}
