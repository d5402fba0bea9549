package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/freightdesk/internal/app"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show customer and contractor balances",
}

var customerBalanceCmd = &cobra.Command{
	Use:   "customer <customer-id>",
	Short: "Show what a customer paid, was invoiced and still owes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid customer id: %w", err)
		}

		return withApp(cmd.Context(), func(_ *env, a *app.App) error {
			b, err := a.Balances.CustomerBalance(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "paid:     %s\n", b.Paid.StringFixed(2))
			fmt.Fprintf(out, "invoiced: %s\n", b.Invoiced.StringFixed(2))
			fmt.Fprintf(out, "unbilled: %s\n", b.Unbilled.StringFixed(2))
			fmt.Fprintf(out, "balance:  %s\n", b.Balance.StringFixed(2))

			return nil
		})
	},
}

var contractorBalanceCmd = &cobra.Command{
	Use:   "contractor <contractor-id>",
	Short: "Show a contractor's running balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid contractor id: %w", err)
		}

		return withApp(cmd.Context(), func(_ *env, a *app.App) error {
			b, err := a.Balances.ContractorBalance(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "balance: %s\n", b.Balance.StringFixed(2))

			return nil
		})
	},
}

func init() {
	balanceCmd.AddCommand(customerBalanceCmd, contractorBalanceCmd)
	rootCmd.AddCommand(balanceCmd)
}
