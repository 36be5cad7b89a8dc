package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/exporter"
	"github.com/draftly/exportkit/core/markdown"
	"github.com/draftly/exportkit/core/output"
)

var (
	flagFormat     string
	flagTitle      string
	flagOutputDir  string
	flagFilename   string
	flagPageSize   string
	flagMargin     float64
	flagFontSize   float64
	flagFontFamily string
	flagNoImages   bool
	flagComments   bool
	flagNoMetadata bool
)

var exportCmd = &cobra.Command{
	Use:   "export <input>",
	Short: "Export a document file to the specified format",
	Long: `Export reads a document file and converts it to the requested format.

Markdown input (.md) is converted to hypertext first; .json input is read
as a serialized structured tree; anything else is treated as raw HTML.

Examples:
  exportkit export article.html --format pdf
  exportkit export notes.md --format docx --title "Meeting Notes"
  exportkit export tree.json --format txt --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: txt, md, html, pdf, or docx")
	exportCmd.Flags().StringVar(&flagTitle, "title", "", "Document title (default: derived from the input)")
	exportCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	exportCmd.Flags().StringVar(&flagFilename, "filename", "", "Custom output filename (extension added if missing)")
	exportCmd.Flags().StringVar(&flagPageSize, "page-size", "", "Page size for paginated output: A4, Letter, or Legal")
	exportCmd.Flags().Float64Var(&flagMargin, "margin", 0, "Uniform page margin in points")
	exportCmd.Flags().Float64Var(&flagFontSize, "font-size", 0, "Base font size in points (8-72)")
	exportCmd.Flags().StringVar(&flagFontFamily, "font-family", "", "Font family")
	exportCmd.Flags().BoolVar(&flagNoImages, "no-images", false, "Exclude embedded images")
	exportCmd.Flags().BoolVar(&flagComments, "comments", false, "Include comment annotations")
	exportCmd.Flags().BoolVar(&flagNoMetadata, "no-metadata", false, "Exclude the metadata header")

	// Config-file values back the layout flags.
	_ = viper.BindPFlag("format", exportCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("page_size", exportCmd.Flags().Lookup("page-size"))
	_ = viper.BindPFlag("margin", exportCmd.Flags().Lookup("margin"))
	_ = viper.BindPFlag("font_size", exportCmd.Flags().Lookup("font-size"))
	_ = viper.BindPFlag("font_family", exportCmd.Flags().Lookup("font-family"))
	_ = viper.BindPFlag("output_dir", exportCmd.Flags().Lookup("output_dir"))
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	coord := exporter.New(logger)
	if v := coord.ValidateOptions(opts); !v.Valid {
		return fmt.Errorf("invalid options: %s", strings.Join(v.Errors, "; "))
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	title := flagTitle
	if title == "" {
		title = titleFromPath(inputPath)
	}

	ctx := context.Background()
	var res core.ExportResult
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".md", ".markdown":
		res = coord.ExportMarkdown(ctx, string(data), markdownTitle(flagTitle, title, data), opts)
	case ".json":
		var tree core.Node
		if err := json.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("parsing structured tree: %w", err)
		}
		res = coord.Export(ctx, core.ExportableContent{StructuredTree: &tree, Title: title}, opts)
	default:
		res = coord.Export(ctx, core.ExportableContent{HTML: string(data), Title: title}, opts)
	}

	if !res.Success {
		return fmt.Errorf("export failed: %s", res.Error)
	}

	writer, err := output.New(viper.GetString("output_dir"))
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Save(res)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "✓ Written: %s (%d words, %d characters)\n",
		path, res.Metadata.WordCount, res.Metadata.CharacterCount)
	return nil
}

// buildOptions assembles ExportOptions from flags layered over config-file
// values.
func buildOptions(cmd *cobra.Command) (core.ExportOptions, error) {
	opts := core.ExportOptions{
		Format:         core.Format(viper.GetString("format")),
		PageSize:       core.PageSize(viper.GetString("page_size")),
		FontSize:       viper.GetFloat64("font_size"),
		FontFamily:     viper.GetString("font_family"),
		CustomFilename: flagFilename,
	}
	if opts.Format == "" {
		return opts, fmt.Errorf("--format is required: one of txt, md, html, pdf, docx")
	}

	if m := viper.GetFloat64("margin"); m != 0 {
		margins := core.UniformMargins(m)
		opts.Margins = &margins
	}
	if flagNoImages {
		opts.IncludeImages = core.Bool(false)
	}
	if cmd.Flags().Changed("comments") {
		opts.IncludeComments = core.Bool(flagComments)
	}
	if flagNoMetadata {
		opts.IncludeMetadata = core.Bool(false)
	}
	return opts, nil
}

// markdownTitle picks the export title for markdown input. The explicit flag
// wins, then a front-matter title, then the name derived from the path.
func markdownTitle(flag, derived string, data []byte) string {
	if flag != "" {
		return flag
	}
	if fields, _ := markdown.ExtractFrontMatter(string(data)); fields["title"] != "" {
		return fields["title"]
	}
	return derived
}

// titleFromPath derives a readable title from the input filename.
func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.TrimSpace(name)
}
