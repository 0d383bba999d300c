package main

import (
	"github.com/spf13/cobra"
)

func savingsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Savings account maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile [user-id] [chama-id]",
		Short: "Compare an account balance with the sum of its ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.Savings.Reconcile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	})
	return cmd
}
