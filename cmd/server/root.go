package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the todo service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo-service",
		Short: "Multi-user todo service",
		Long: `todo-service serves per-user todo lists behind cookie sessions.
Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepCmd())

	return cmd
}
