// ABOUTME: CLI commands to browse and delete coach conversations
// ABOUTME: history lists recent threads, show prints one, delete removes one
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/nutricoach/internal/models"
)

var historyLimit int

// NewHistoryCmd creates history command
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversations",
		Long: `List your most recent conversations with the coach, newest first.

Examples:
  nutricoach history
  nutricoach history --limit 5
  nutricoach history --format json`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum conversations to show (default $NUTRICOACH_HISTORY_LIMIT)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	user, err := requireUser(a)
	if err != nil {
		return err
	}

	limit := a.Config.HistoryLimit
	if cmd.Flags().Changed("limit") {
		if err := validatePositiveInt(historyLimit, "limit"); err != nil {
			return err
		}
		limit = historyLimit
	}

	convs, err := a.Agent.Conversations().FetchRecentConversations(cmd.Context(), user, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		if convs == nil {
			convs = []models.Conversation{}
		}
		return printJSON(out, convs)
	}

	if len(convs) == 0 {
		if !quiet {
			fmt.Fprintln(out, "No conversations yet")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TITLE\tLAST MESSAGE\tUPDATED\tID\n")
	fmt.Fprintf(w, "-----\t------------\t-------\t--\n")
	for _, c := range convs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncate(c.Title, 30),
			truncate(models.StripMarkdown(c.LastMessage), 40),
			formatTime(c.UpdatedAt),
			c.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(out, "\nTotal: %d conversation(s)\n", len(convs))
	}
	return nil
}

// NewShowCmd creates show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a conversation",
		Long: `Print every message of a conversation, oldest first.

Examples:
  nutricoach show 5f0c2a8e-...`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	user, err := requireUser(a)
	if err != nil {
		return err
	}

	msgs, err := a.Agent.Conversations().FetchMessages(cmd.Context(), user, args[0])
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("conversation %s not found", args[0])
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, msgs)
	}

	if msgs[0].Title != "" {
		fmt.Fprintf(out, "# %s\n\n", msgs[0].Title)
	}
	for _, m := range msgs {
		name := "You"
		if m.Sender == models.SenderCoach {
			name = m.SenderName
			if name == "" {
				name = "Coach"
			}
		}
		fmt.Fprintf(out, "%s (%s):\n%s\n\n", name, m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Content)
	}
	return nil
}

// NewDeleteCmd creates delete command
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a conversation",
		Long: `Delete a conversation and all of its messages.

Examples:
  nutricoach delete 5f0c2a8e-...`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	user, err := requireUser(a)
	if err != nil {
		return err
	}

	n, err := a.Agent.Conversations().DeleteConversation(cmd.Context(), user, args[0])
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("conversation %s not found", args[0])
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted conversation %s (%d messages)\n", args[0], n)
	}
	return nil
}
