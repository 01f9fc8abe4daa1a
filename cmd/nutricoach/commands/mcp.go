// ABOUTME: MCP command starts the Model Context Protocol server on stdio
// ABOUTME: Lets LLM agents ask the coach and log health data as tools
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/nutricoach/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs NutriCoach as an MCP (Model Context Protocol) server so that
LLM agents can ask the coach questions, browse conversations and log
meals on behalf of the configured user via stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  nutricoach mcp --user alice

  # Configure in the client's config file:
  # {
  #   "mcpServers": {
  #     "nutricoach": {
  #       "command": "nutricoach",
  #       "args": ["mcp"],
  #       "env": {"NUTRICOACH_USER": "alice"}
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server and blocks until stdin closes or a signal arrives
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Warn("error closing storage", zap.Error(err))
		}
	}()

	logger := a.Logger.Named("mcp")
	if a.Config.DefaultUser == "" {
		logger.Warn("NUTRICOACH_USER not set; user-scoped tools will refuse requests")
	}

	server := mcpserver.NewMCPServer("NutriCoach", versionInfo.Version)
	mcp.RegisterTools(server, mcp.NewHandlers(a.Agent, a.Store, a.Config.DefaultUser, logger))

	logger.Info("MCP server starting on stdio", zap.String("provider", a.Provider.Name()))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
