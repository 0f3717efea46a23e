package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Plan one question and print the result without running it",
		Example: `  assistant ask 统计计算机学院人数
  assistant ask "how many students are in each college"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	session, err := openLocalSession(ctx, env)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	plan := session.assistant.Handle(ctx, strings.Join(args, " "), nil, nil)
	renderPlan(cmd.OutOrStdout(), plan)
	return nil
}
