// Package markdown implements the bidirectional Markdown ↔ HTML converter.
// HTML→Markdown runs a goquery pre-pass (task lists, collaboration spans),
// the html-to-markdown conversion, and a regex post-pass that normalizes the
// output. Both directions degrade on internal failure instead of raising:
// a converter bug must never take an export down with it.
package markdown

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	meta "github.com/yuin/goldmark-meta"
)

// Converter performs Markdown↔HTML conversion with export-specific cleanup.
type Converter struct {
	md   goldmark.Markdown
	html *converter.Converter
}

// New creates a Converter. The HTML→Markdown converter is assembled from
// explicit plugins: the default set has no rules for tables or
// strikethrough, and both must survive conversion.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, meta.Meta),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithUnsafe(),
			),
		),
		html: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
				strikethrough.NewStrikethroughPlugin(),
			),
		),
	}
}

// HTMLToMarkdown converts hypertext into normalized Markdown. On internal
// failure it returns the original hypertext unchanged.
func (c *Converter) HTMLToMarkdown(raw string) string {
	out, err := c.convert(raw)
	if err != nil {
		return raw
	}
	return out
}

func (c *Converter) convert(raw string) (string, error) {
	pre, err := preprocess(raw)
	if err != nil {
		return "", fmt.Errorf("preprocessing HTML: %w", err)
	}

	out, err := c.html.ConvertString(pre)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	return postprocess(out), nil
}

// MarkdownToHTML renders Markdown as an HTML fragment with task-list support,
// hard line breaks, and bare-link autodetection. A leading front-matter block
// is consumed rather than rendered. On internal failure the input comes back
// wrapped in a single paragraph.
func (c *Converter) MarkdownToHTML(markup string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markup), &buf); err != nil {
		return "<p>" + stdhtml.EscapeString(markup) + "</p>"
	}
	return buf.String()
}

// preprocess rewrites constructs html-to-markdown has no rule for. Checkbox
// list items become literal [x]/[ ] markers so task lists survive the
// conversion, and collaboration highlight spans are unwrapped.
func preprocess(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("li input[type='checkbox']").Each(func(_ int, s *goquery.Selection) {
		marker := "[ ] "
		if _, checked := s.Attr("checked"); checked {
			marker = "[x] "
		}
		s.ReplaceWithHtml(marker)
	})

	// Highlight spans carry no content of their own; keep their children.
	doc.Find("span.comment-highlight, mark.comment-highlight").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return raw, nil
	}
	inner, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("serializing HTML: %w", err)
	}
	return inner, nil
}

// Post-processing rules, applied in order.
var (
	reBlankRuns      = regexp.MustCompile(`\n{3,}`)
	reBulletMarker   = regexp.MustCompile(`(?m)^([ \t]*)[*+] `)
	reHeadingSpacing = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+`)
	reStarRun        = regexp.MustCompile(`\*{3,}`)
	reUnderscoreRun  = regexp.MustCompile(`_{3,}`)
	reTaskMarker     = regexp.MustCompile(`(?m)^([ \t]*)- \\?\[( |x|X)\\?\][ \t]+`)
	reRuleVariants   = regexp.MustCompile(`(?m)^[ \t]*(?:(?:\* *){3,}|(?:- *){3,}|(?:_ *){3,})[ \t]*$`)
)

// postprocess normalizes converted Markdown: horizontal-rule variants become
// ---, bullets become -, heading markers get a single space, 3+ emphasis
// markers collapse to the 2-marker form, and 3+ blank lines collapse to one.
func postprocess(out string) string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = reRuleVariants.ReplaceAllString(out, "---")
	out = reBulletMarker.ReplaceAllString(out, "$1- ")
	out = reTaskMarker.ReplaceAllString(out, "$1- [$2] ")
	out = reHeadingSpacing.ReplaceAllString(out, "$1 ")
	out = reStarRun.ReplaceAllString(out, "**")
	out = reUnderscoreRun.ReplaceAllString(out, "__")
	out = reBlankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Markup heuristics: any one match marks the text as Markdown-like.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s`),          // heading
	regexp.MustCompile(`(?m)^\s*[-*+]\s`),        // bullet list
	regexp.MustCompile(`(?m)^\s*\d+\.\s`),        // numbered list
	regexp.MustCompile(`(?m)^\s*>\s`),            // blockquote
	regexp.MustCompile("(?m)^```"),               // fenced code
	regexp.MustCompile(`\*\*[^*\n]+\*\*`),        // bold
	regexp.MustCompile(`\*[^*\n]+\*`),            // italic
	regexp.MustCompile("`[^`\n]+`"),              // inline code
	regexp.MustCompile(`\[[^\]\n]*\]\([^)\n]*\)`), // link
	regexp.MustCompile(`!\[[^\]\n]*\]`),          // image
}

// IsMarkdownLike reports whether the text looks like lightweight markup
// rather than plain prose.
func IsMarkdownLike(text string) bool {
	for _, re := range markupPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var (
	reInlineItalic = regexp.MustCompile(`(^|\s)\*([^*]+)\*(\s|$)`)
	reInlineCode   = regexp.MustCompile("`([^`]+)`")
	reInlineStrike = regexp.MustCompile(`~~([^~]+)~~`)
	reInlineLink   = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
	reInlineImage  = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
)

// StripInline removes inline Markdown formatting, keeping the readable text:
// images reduce to alt text, links to their text, emphasis and code markers
// disappear.
func StripInline(text string) string {
	text = reInlineImage.ReplaceAllString(text, "$1")
	text = reInlineLink.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = reInlineItalic.ReplaceAllString(text, "$1$2$3")
	text = reInlineCode.ReplaceAllString(text, "$1")
	text = reInlineStrike.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
