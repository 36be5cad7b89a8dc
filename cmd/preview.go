package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/exporter"
)

var previewCmd = &cobra.Command{
	Use:   "preview <input>",
	Short: "Render a document's Markdown export in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	coord := exporter.New(logger)
	opts := core.ExportOptions{Format: core.FormatMarkdown, IncludeMetadata: core.Bool(false)}

	ctx := context.Background()
	var res core.ExportResult
	if strings.ToLower(filepath.Ext(args[0])) == ".md" {
		res = coord.ExportMarkdown(ctx, string(data), "", opts)
	} else {
		res = coord.Export(ctx, core.ExportableContent{HTML: string(data), Title: titleFromPath(args[0])}, opts)
	}
	if !res.Success {
		return fmt.Errorf("export failed: %s", res.Error)
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	out, err := r.Render(string(res.Artifact))
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}

	fmt.Fprint(os.Stdout, out)
	return nil
}
