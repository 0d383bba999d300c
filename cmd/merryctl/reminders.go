package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoGateway = errors.New("WAHA_BASE_URL is not set; reminders are disabled")

func remindersCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "WhatsApp reminder tooling",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Send late reminders for overdue contributions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if a.Sweeper == nil {
				return errNoGateway
			}
			out, err := a.Sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	})
	return cmd
}
