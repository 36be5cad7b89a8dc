package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/exporter"
)

var formatDescriptions = map[core.Format]string{
	core.FormatText:     "Plain text, all markup stripped",
	core.FormatMarkdown: "Markdown with optional front matter",
	core.FormatHTML:     "Standalone styled HTML document",
	core.FormatPDF:      "Paginated PDF",
	core.FormatWord:     "Word-processor document (OOXML)",
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported export formats",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range exporter.Default().SupportedFormats() {
			fmt.Fprintf(os.Stdout, "%-6s %-8s %s\n", f, f.Extension(), formatDescriptions[f])
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
