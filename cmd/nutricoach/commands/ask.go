// ABOUTME: CLI command to ask the coach a question
// ABOUTME: Runs one turn and prints the answer, optionally with the analyst notes
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/models"
)

var (
	askConversation string
	askTopics       []string
	askThinking     bool
)

// NewAskCmd creates ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the coach a question",
		Long: `Ask the coach a question. The coach reads the health data your question
is about (or every topic when it cannot tell) and answers in three sections.

Examples:
  nutricoach ask "What should I eat for breakfast?"
  nutricoach ask "@meals @health am I on track?"
  nutricoach ask --topics reminders,today "anything I should do tonight?"
  nutricoach ask -c 5f0c... "and for dinner?"
  echo "how much water should I drink" | nutricoach ask`,
		RunE: runAsk,
	}

	cmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "Continue an existing conversation")
	cmd.Flags().StringSliceVar(&askTopics, "topics", []string{}, "Topics to include (comma-separated)")
	cmd.Flags().BoolVar(&askThinking, "thinking", false, "Also print the analyst notes")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return fmt.Errorf("no question provided")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	user, err := requireUser(a)
	if err != nil {
		return err
	}

	opts := core.QueryOptions{
		ConversationID: askConversation,
		ExplicitTopics: models.ParseTopics(askTopics),
	}
	if verbose {
		opts.OnToolCalls = func(calls []models.ToolCall) {
			last := calls[len(calls)-1]
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", last.Status, last.Topic)
		}
	}

	result, err := a.Agent.ProcessUserQuery(ctx, user, question, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, result)
	}

	if askThinking {
		fmt.Fprintf(out, "Thinking:\n%s\n\n", result.Thinking)
	}
	fmt.Fprintln(out, result.Response)

	if !quiet {
		fmt.Fprintf(out, "\nconversation: %s  topics: %s\n",
			result.ConversationID, strings.Join(models.TopicStrings(result.TopicsUsed), ", "))
		if !result.Persisted {
			fmt.Fprintln(out, "warning: this turn could not be saved")
		}
	}
	return nil
}
