package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"merry/internal/app"
	"merry/internal/config"
	"merry/internal/infrastructure/cache"
	"merry/internal/infrastructure/db"
	"merry/pkg/logging"
)

var Version = "dev"

// opener builds the application graph on first use so --help works offline.
type opener func(ctx context.Context) (*app.App, error)

func main() {
	config.LoadDotenv()
	logging.Setup()

	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "merryctl",
		Short:         "Admin tooling for merry chamas",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(open))
	root.AddCommand(cycleCmd(open))
	root.AddCommand(loanCmd(open))
	root.AddCommand(savingsCmd(open))
	root.AddCommand(remindersCmd(open))
	return root
}

func openFromEnv(_ context.Context) (*app.App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// redis is optional here; reminders fall back to in-process dedupe
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		rdb = nil
	}
	cfg.AsyncEvents = false
	return app.New(cfg, gdb, rdb), nil
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every merry table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(a.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
