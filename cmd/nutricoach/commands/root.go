// ABOUTME: Root command, global flags and shared setup for CLI commands
// ABOUTME: Opens config, logger and the wired coach for each run
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/nutricoach/internal/app"
	"github.com/harper/nutricoach/internal/config"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	userFlag     string
	dbFlag       string
)

const banner = `
███╗   ██╗██╗   ██╗████████╗██████╗ ██╗
████╗  ██║██║   ██║╚══██╔══╝██╔══██╗██║
██╔██╗ ██║██║   ██║   ██║   ██████╔╝██║
██║╚██╗██║██║   ██║   ██║   ██╔══██╗██║
██║ ╚████║╚██████╔╝   ██║   ██║  ██║██║
╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚═╝  ╚═╝╚═╝  coach`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nutricoach",
		Short: "Context-aware nutrition coach",
		Long: banner + `

NutriCoach answers nutrition questions using your own health data:
profile, body metrics, today's tracking, recent meals, habits and reminders.

Mention a topic with @ (for example "@meals") to choose what the coach reads.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text or json")
	cmd.PersistentFlags().StringVar(&userFlag, "user", "", "User ID to act as (default $NUTRICOACH_USER)")
	cmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path (default $NUTRICOACH_DB or XDG data dir)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewAskCmd(),
		NewHistoryCmd(),
		NewShowCmd(),
		NewDeleteCmd(),
		NewLogCmd(),
		NewProfileCmd(),
		NewSessionCmd(),
		NewExportCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env and the environment, then applies global flags
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	if userFlag != "" {
		cfg.DefaultUser = userFlag
	}
	return cfg, nil
}

// newLogger builds a console logger; CLI output stays on stdout, logs on stderr
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	case level == "info":
		level = "warn"
	}
	return logging.New(logging.Options{Level: level, JSON: false})
}

// openApp wires the coach for one command run; callers must Close it
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// requireUser returns the configured user or a helpful error
func requireUser(a *app.App) (string, error) {
	if a.Config.DefaultUser == "" {
		return "", errors.New("no user configured: set NUTRICOACH_USER or pass --user")
	}
	return a.Config.DefaultUser, nil
}

// wantJSON reports whether output should be JSON
func wantJSON() bool {
	return outputFormat == "json"
}
