package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/freightdesk/internal/app"
	"github.com/MrJamesThe3rd/freightdesk/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <statement.csv>",
	Short: "Reconcile a bank statement against open invoices",
	Long: `Reads a bank statement export, matches each credit line to an invoice and
prints the result. Nothing is written unless --apply is given.

Re-importing an overlapping statement is safe: lines already recorded are
reported as duplicates.`,
	Example: `  # Preview
  freightdesk-ctl import extrato.csv

  # Record matched lines as bank transfers
  freightdesk-ctl import extrato.csv --apply`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("apply", false, "Record matched lines as payments")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	return withApp(cmd.Context(), func(_ *env, a *app.App) error {
		report, err := a.Importer.Import(cmd.Context(), f, apply)
		if err != nil {
			return err
		}

		printReport(cmd, report)

		return nil
	})
}

func printReport(cmd *cobra.Command, report *importer.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "profile %s, charset %s\n\n", report.Profile, report.Charset)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tDATE\tAMOUNT\tSTATUS\tINVOICE\tDESCRIPTION")

	for _, l := range report.Lines {
		status := string(l.Status)
		if l.Error != "" {
			status += " (" + l.Error + ")"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.Line.Row,
			l.Line.Date.Format("2006-01-02"),
			l.Line.Amount.StringFixed(2),
			status,
			l.InvoiceNumber,
			l.Line.Description,
		)
	}

	_ = tw.Flush()

	fmt.Fprintf(out, "\n%d matched, %d applied, %d duplicate, %d unmatched, %d failed\n",
		report.Count(importer.LineMatched),
		report.Count(importer.LineApplied),
		report.Count(importer.LineDuplicate),
		report.Count(importer.LineUnmatched),
		report.Count(importer.LineFailed),
	)
}
