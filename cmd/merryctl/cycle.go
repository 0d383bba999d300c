package main

import (
	"github.com/spf13/cobra"

	cycleuc "merry/internal/usecase/cycle"
)

func cycleCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Drive a cycle through its periods",
	}

	start := &cobra.Command{
		Use:   "start [cycle-id]",
		Short: "Start a pending cycle and open period 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Cycles.Start(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	var expected int
	advance := &cobra.Command{
		Use:   "advance [cycle-id]",
		Short: "Move an active cycle to its next period",
		Long: `Move an active cycle to its next period, or complete it after the last one.

--expected is the period the cycle is at now. It makes the command safe to
re-run: it fails without writing when the cycle is no longer at that period.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Cycles.Advance(cmd.Context(), cycleuc.AdvanceInput{CycleID: args[0], ExpectedPeriod: expected})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	advance.Flags().IntVar(&expected, "expected", 0, "period the cycle must currently be at")
	_ = advance.MarkFlagRequired("expected")

	summary := &cobra.Command{
		Use:   "summary [cycle-id]",
		Short: "Show collection progress for the current period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			s, err := a.Cycles.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	}

	cmd.AddCommand(start, advance, summary)
	return cmd
}
