// ABOUTME: CLI command to export the user's health data and conversations
// ABOUTME: Writes YAML, Markdown or JSON to stdout or a file
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harper/nutricoach/internal/app"
	"github.com/harper/nutricoach/internal/storage/sqlite"
)

var (
	exportFormat string
	exportOutput string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your data",
		Long: `Export your profile, health logs, reminders and conversations.

Examples:
  nutricoach export
  nutricoach export --as markdown --output ~/coach.md
  nutricoach export --as json > backup.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportFormat, "as", "yaml", "Export format: yaml, markdown or json")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	var write func(io.Writer, *sqlite.ExportData) error
	switch exportFormat {
	case "yaml", "yml":
		write = sqlite.WriteYAML
	case "markdown", "md":
		write = sqlite.WriteMarkdown
	case "json":
		write = func(w io.Writer, data *sqlite.ExportData) error { return printJSON(w, data) }
	default:
		return fmt.Errorf("unknown export format %q (want yaml, markdown or json)", exportFormat)
	}

	return withUser(cmd, func(a *app.App, user string) error {
		data, err := a.Store.Export(cmd.Context(), user)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			return write(cmd.OutOrStdout(), data)
		}

		if err := os.MkdirAll(filepath.Dir(exportOutput), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		file, err := os.Create(exportOutput) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()

		if err := write(file, data); err != nil {
			return err
		}
		confirm(cmd, "Exported to %s", exportOutput)
		return nil
	})
}
