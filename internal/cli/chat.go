package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/hq040506/DL-student-assistant/internal/repositories"
	"github.com/hq040506/DL-student-assistant/internal/services"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		Long: `Start an interactive session. Conversation state is kept in the local SQLite
file so a session can be resumed with --session.`,
		RunE: runChat,
	}
	cmd.Flags().String("session", "", "Resume a session by id (default: start a new one)")
	cmd.Flags().Bool("show-sql", false, "Print each statement before its result")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, _ := cmd.Flags().GetString("session")
	showSQL, _ := cmd.Flags().GetBool("show-sql")

	store, err := repositories.NewSQLiteConversationStore(env.SQLitePath, env.ConversationTTL)
	if err != nil {
		return fmt.Errorf("failed to open conversation store: %w", err)
	}
	defer func() { _ = store.Close() }()
	if purged, err := store.Purge(ctx); err == nil && purged > 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "purged %d expired sessions\n", purged)
	}

	session, err := openLocalSession(ctx, env)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	runner := services.NewTurnRunner(session.assistant, session.students, store, env.HistoryWindow)
	if sessionID == "" {
		sessionID = store.NewID()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "assistant> ",
		HistoryFile:     filepath.Join(filepath.Dir(env.SQLitePath), ".assistant_history"),
		AutoComplete:    newCommandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "学生信息助手 (session %s)\n", sessionID)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			switch strings.ToLower(strings.Fields(line)[0]) {
			case ".quit", ".exit":
				return nil
			case ".help":
				printChatHelp(out)
			case ".reset":
				if err := runner.Reset(ctx, sessionID); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				} else {
					_, _ = fmt.Fprintln(out, "conversation cleared")
				}
			case ".session":
				_, _ = fmt.Fprintln(out, sessionID)
			case ".sql":
				showSQL = !showSQL
				_, _ = fmt.Fprintf(out, "show sql: %v\n", showSQL)
			default:
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", line)
			}
			continue
		}

		result, err := runner.Run(ctx, sessionID, line)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		renderTurn(out, result, showSQL)
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

func printChatHelp(w io.Writer) {
	help := `
Commands:
  .help      Show this help message
  .reset     Forget the conversation so far
  .session   Print the session id
  .sql       Toggle printing of generated SQL
  .quit      Exit

Examples:
  统计计算机学院人数
  查询张三的信息
  把张三的电话改成13900000000
`
	_, _ = fmt.Fprintln(w, help)
}

func newCommandCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".reset"),
		readline.PcItem(".session"),
		readline.PcItem(".sql"),
		readline.PcItem(".quit"),
	)
}
