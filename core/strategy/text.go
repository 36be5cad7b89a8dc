package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/markdown"
	"github.com/draftly/exportkit/core/normalize"
)

// TextExporter emits a plain-text artifact: all markup stripped, whitespace
// cleaned, with an optional metadata banner.
type TextExporter struct {
	norm *normalize.Normalizer
	conv *markdown.Converter
}

// NewTextExporter creates a TextExporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{norm: normalize.New(), conv: markdown.New()}
}

// SupportedFormats returns the plain-text format key.
func (e *TextExporter) SupportedFormats() []core.Format {
	return []core.Format{core.FormatText}
}

// Export converts the envelope into plain text.
func (e *TextExporter) Export(ctx context.Context, content core.ExportableContent, opts core.ExportOptions) core.ExportResult {
	raw, err := e.norm.Resolve(content)
	if err != nil {
		return core.Failure(err)
	}

	title := effectiveTitle(content)
	now := time.Now()

	text := e.toPlainText(applyContentOptions(raw, opts))
	if opts.WithMetadata() {
		text = banner(title, now) + text
	}
	payload := strings.TrimRight(text, "\n") + "\n"

	return core.ExportResult{
		Success:     true,
		Filename:    filename(title, opts.CustomFilename, core.FormatText),
		Artifact:    []byte(payload),
		ContentType: "text/plain; charset=utf-8",
		Metadata:    buildMetadata(core.FormatText, title, content.ID, payload, now),
	}
}

// toPlainText strips markup from the hypertext: style and script blocks go
// first, then the remainder is converted to Markdown and the Markdown
// syntax stripped line by line.
func (e *TextExporter) toPlainText(raw string) string {
	raw = dropEmbeddedBlocks(raw)
	md := e.conv.HTMLToMarkdown(raw)
	return cleanWhitespace(stripMarkdown(md))
}

// dropEmbeddedBlocks removes style, script, and noscript elements whose text
// content would otherwise leak into the output.
func dropEmbeddedBlocks(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	doc.Find("script, style, noscript").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		return raw
	}
	inner, err := body.Html()
	if err != nil {
		return raw
	}
	return inner
}

var reTextBlankRuns = regexp.MustCompile(`\n{3,}`)

// stripMarkdown removes Markdown syntax while keeping the readable text.
// List dashes survive; they are plain-text idiom as much as markup.
func stripMarkdown(md string) string {
	var out []string
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			continue
		case trimmed == "---":
			continue
		case strings.HasPrefix(trimmed, "#"):
			out = append(out, markdown.StripInline(strings.TrimLeft(trimmed, "# ")))
		case strings.HasPrefix(trimmed, ">"):
			out = append(out, markdown.StripInline(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))))
		case strings.HasPrefix(trimmed, "|"):
			out = append(out, flattenTableRow(trimmed))
		case strings.HasPrefix(trimmed, "- "):
			out = append(out, "- "+markdown.StripInline(trimmed[2:]))
		default:
			out = append(out, markdown.StripInline(line))
		}
	}
	return strings.Join(out, "\n")
}

// flattenTableRow turns a pipe row into space-separated cells; separator
// rows flatten to nothing.
func flattenTableRow(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	var parts []string
	for _, c := range cells {
		c = markdown.StripInline(strings.TrimSpace(c))
		if c != "" && strings.Trim(c, ":- ") != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "  ")
}

// cleanWhitespace normalizes line endings, trims per-line trailing space,
// and collapses 3+ blank lines.
func cleanWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = reTextBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// banner is the optional plain-text metadata header.
func banner(title string, at time.Time) string {
	sep := strings.Repeat("=", 40)
	return fmt.Sprintf("%s\nExported: %s\n%s\n\n", title, at.Format("2006-01-02 15:04"), sep)
}
