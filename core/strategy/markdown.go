package strategy

import (
	"context"
	"strings"
	"time"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/markdown"
	"github.com/draftly/exportkit/core/normalize"
)

// MarkdownExporter emits the canonical hypertext as normalized Markdown,
// optionally prefixed by a front-matter metadata block.
type MarkdownExporter struct {
	norm *normalize.Normalizer
	conv *markdown.Converter
}

// NewMarkdownExporter creates a MarkdownExporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{norm: normalize.New(), conv: markdown.New()}
}

// SupportedFormats returns the Markdown format key.
func (e *MarkdownExporter) SupportedFormats() []core.Format {
	return []core.Format{core.FormatMarkdown}
}

// Export converts the envelope into Markdown.
func (e *MarkdownExporter) Export(ctx context.Context, content core.ExportableContent, opts core.ExportOptions) core.ExportResult {
	raw, err := e.norm.Resolve(content)
	if err != nil {
		return core.Failure(err)
	}

	title := effectiveTitle(content)
	now := time.Now()

	body := e.conv.HTMLToMarkdown(applyContentOptions(raw, opts))

	payload := body + "\n"
	if opts.WithMetadata() {
		// Counts inside the block describe the converted body; the result
		// metadata below describes the whole emitted payload.
		fm := markdown.FrontMatterBlock(map[string]any{
			"title":      title,
			"date":       now.Format(time.RFC3339),
			"format":     string(core.FormatMarkdown),
			"words":      len(strings.Fields(body)),
			"characters": len([]rune(body)),
		})
		payload = fm + "\n" + payload
	}

	return core.ExportResult{
		Success:     true,
		Filename:    filename(title, opts.CustomFilename, core.FormatMarkdown),
		Artifact:    []byte(payload),
		ContentType: "text/markdown; charset=utf-8",
		Metadata:    buildMetadata(core.FormatMarkdown, title, content.ID, payload, now),
	}
}
