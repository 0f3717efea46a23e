package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hq040506/DL-student-assistant/internal/di"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the students table and insert the demo students if it is empty",
		RunE:  runSeed,
	}

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := *env
	cfg.SeedOnStart = true
	manager, students, err := di.ConnectStudents(ctx, &cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Stop() }()

	_, total, err := students.Query(ctx, dbmanager.StudentFilter{Limit: 1})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "students table ready: %d rows\n", total)
	return nil
}
