// ABOUTME: CLI command to issue and revoke web session tokens
// ABOUTME: Tokens authenticate the HTTP API and the chat WebSocket
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/nutricoach/internal/app"
)

// NewSessionCmd creates the session command group
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage API session tokens",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a session token for the configured user",
		Example: `  nutricoach session create --user alice
  curl -H "Authorization: Bearer <token>" localhost:8080/api/conversations`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(a *app.App, user string) error {
				sess, err := a.Store.CreateSession(cmd.Context(), user, a.Config.SessionTTL)
				if err != nil {
					return fmt.Errorf("creating session: %w", err)
				}
				if wantJSON() {
					return printJSON(cmd.OutOrStdout(), sess)
				}
				fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", sess.ExpiresAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.Store.DeleteSession(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("revoking session: %w", err)
			}
			confirm(cmd, "Revoked session")
			return nil
		},
	}

	cmd.AddCommand(create, revoke)
	return cmd
}
