package strategy

import (
	"context"
	"fmt"
	stdhtml "html"
	"strings"
	"time"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/normalize"
)

// HTMLExporter wraps the canonical hypertext in a complete standalone
// document: embedded stylesheet, header, content body, and footer.
type HTMLExporter struct {
	norm *normalize.Normalizer
}

// NewHTMLExporter creates an HTMLExporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{norm: normalize.New()}
}

// SupportedFormats returns the hypertext format key.
func (e *HTMLExporter) SupportedFormats() []core.Format {
	return []core.Format{core.FormatHTML}
}

// Export converts the envelope into a standalone HTML document.
func (e *HTMLExporter) Export(ctx context.Context, content core.ExportableContent, opts core.ExportOptions) core.ExportResult {
	raw, err := e.norm.Resolve(content)
	if err != nil {
		return core.Failure(err)
	}

	title := effectiveTitle(content)
	now := time.Now()
	body := applyContentOptions(raw, opts)

	payload := buildDocument(title, body, opts, now)

	return core.ExportResult{
		Success:     true,
		Filename:    filename(title, opts.CustomFilename, core.FormatHTML),
		Artifact:    []byte(payload),
		ContentType: "text/html; charset=utf-8",
		Metadata:    buildMetadata(core.FormatHTML, title, content.ID, payload, now),
	}
}

// buildDocument assembles the standalone document around the body.
func buildDocument(title, body string, opts core.ExportOptions, at time.Time) string {
	escTitle := stdhtml.EscapeString(title)
	ts := at.Format("2006-01-02 15:04")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>" + escTitle + "</title>\n")
	b.WriteString("<style>\n" + stylesheet(opts) + "</style>\n")
	b.WriteString("</head>\n<body>\n")

	b.WriteString("<header class=\"export-header\">\n<h1>" + escTitle + "</h1>\n")
	if opts.WithMetadata() {
		b.WriteString("<p class=\"export-meta\">Exported " + ts + "</p>\n")
	}
	b.WriteString("</header>\n")

	b.WriteString("<main class=\"export-content\">\n" + body + "\n</main>\n")

	b.WriteString("<footer class=\"export-footer\">Exported " + ts + "</footer>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// stylesheet emits the embedded CSS, parameterized by font family, font
// size, and margins.
func stylesheet(opts core.ExportOptions) string {
	m := opts.EffectiveMargins()
	family := opts.FontFamily
	if family == "" {
		family = core.DefaultFontFamily
	}
	size := opts.FontSize
	if size == 0 {
		size = core.DefaultFontSize
	}

	return fmt.Sprintf(`body {
  font-family: %s, sans-serif;
  font-size: %.4gpt;
  line-height: 1.6;
  color: #1a1a1a;
  background: #ffffff;
  max-width: 720pt;
  margin: 0 auto;
  padding: %.4gpt %.4gpt %.4gpt %.4gpt;
}
h1 { font-size: 2em; }
h2 { font-size: 1.6em; }
h3 { font-size: 1.35em; }
h4 { font-size: 1.2em; }
h5 { font-size: 1.1em; }
h6 { font-size: 1em; }
h1, h2, h3, h4, h5, h6 { line-height: 1.3; margin: 1.2em 0 0.5em; }
p { margin: 0.8em 0; }
a { color: #1155cc; text-decoration: none; }
img { max-width: 100%%; height: auto; }
pre {
  background: #f5f5f5;
  padding: 0.8em;
  overflow-x: auto;
  white-space: pre-wrap;
  border-radius: 4px;
}
code { font-family: Courier, monospace; font-size: 0.9em; background: #f5f5f5; }
blockquote {
  border-left: 3px solid #b4b4b4;
  margin-left: 0;
  padding-left: 1em;
  color: #646464;
}
table { border-collapse: collapse; width: 100%%; margin: 1em 0; }
th, td { border: 1px solid #a0a0a0; padding: 0.4em 0.6em; text-align: left; }
th { background: #ebebeb; }
ul, ol { padding-left: 1.6em; }
ul.task-list, li.task-list-item { list-style: none; padding-left: 0.2em; }
li.task-list-item input { margin-right: 0.5em; }
hr { border: none; border-top: 1px solid #c8c8c8; margin: 1.5em 0; }
.export-header { border-bottom: 1px solid #c8c8c8; margin-bottom: 1.5em; }
.export-meta, .export-footer { color: #646464; font-size: 0.85em; }
.export-footer { border-top: 1px solid #c8c8c8; margin-top: 2em; padding-top: 0.5em; }
@media print {
  body { max-width: none; margin: 0; padding: 0; }
  a { color: inherit; }
  pre, blockquote, table, img { page-break-inside: avoid; }
  h1, h2, h3 { page-break-after: avoid; }
}
`, family, size, m.Top, m.Right, m.Bottom, m.Left)
}
