package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func loanCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Inspect and settle loans",
	}

	var at string
	breakdown := &cobra.Command{
		Use:   "breakdown [loan-id]",
		Short: "Price a loan, including any overdue penalty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now().UTC()
			if at != "" {
				t, err := time.ParseInLocation("2006-01-02", at, time.UTC)
				if err != nil {
					return fmt.Errorf("--at must be YYYY-MM-DD: %w", err)
				}
				when = t
			}
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			b, err := a.Loans.Breakdown(cmd.Context(), args[0], when)
			if err != nil {
				return err
			}
			return printJSON(cmd, b)
		},
	}
	breakdown.Flags().StringVar(&at, "at", "", "price the loan as of this date (YYYY-MM-DD)")

	markDefault := &cobra.Command{
		Use:   "default [loan-id]",
		Short: "Mark an active loan as defaulted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			dto, err := a.Loans.MarkDefaulted(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, dto)
		},
	}

	cmd.AddCommand(breakdown, markDefault)
	return cmd
}
