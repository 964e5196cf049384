package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/todoapp/todo-service/internal/core/service"
	"github.com/todoapp/todo-service/internal/pkg/config"
)

// NewSweepCmd creates the sweep-sessions subcommand.
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Delete expired sessions once",
		Long:  `Delete every expired session and exit. Suitable for a cron job when the server's own sweeper is disabled.`,
		RunE:  runSweep,
	}
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := newLogger(cfg)

	provider := newProvider(cfg, log, nil)
	defer provider.Close()

	deleted, err := service.NewSessionSweeper(provider, cfg.Session.SweepInterval, log).SweepOnce(cmd.Context())
	if err != nil {
		return oops.Code("SWEEP_FAILED").With("operation", "delete expired sessions").Wrap(err)
	}

	cmd.Printf("Deleted %d expired session(s)\n", deleted)
	return nil
}
