// Package cli implements the assistant commands: the HTTP server and the terminal front end.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hq040506/DL-student-assistant/config"
)

var (
	env             *config.Environment
	shutdownTracing func(context.Context) error
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Natural-language assistant over student records",
	Long: `Ask questions about student records in Chinese or English. Questions are turned
into SQL by a rule planner, optionally backed by an LLM, and run against the
students database. Updates and deletions always ask for confirmation first.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		env, err = config.LoadEnv()
		if err != nil {
			return fmt.Errorf("failed to load environment variables: %w", err)
		}

		shutdownTracing, err = setupTracing(env.TracingEnabled, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if shutdownTracing == nil {
			return nil
		}
		return shutdownTracing(context.Background())
	},
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
