// Package strategy implements one exporter per output format. Every
// strategy resolves the envelope through the normalizer, emits its artifact,
// and computes metadata from the final emitted payload. Strategies catch
// their own failures and report them through the result.
package strategy

import (
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/draftly/exportkit/core"
)

// DefaultTitle is used when the envelope carries no title.
const DefaultTitle = "Untitled Article"

// effectiveTitle returns the envelope title or the default.
func effectiveTitle(content core.ExportableContent) string {
	if t := strings.TrimSpace(content.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// filename derives the artifact filename: a custom name is used verbatim
// (plus the required extension), otherwise the title is slugged and dated.
func filename(title, custom string, format core.Format) string {
	ext := format.Extension()
	if custom != "" {
		if strings.HasSuffix(strings.ToLower(custom), ext) {
			return custom
		}
		return custom + ext
	}
	return slugify(title) + "-" + time.Now().Format("2006-01-02") + ext
}

// slugify lowercases the title and collapses every non-alphanumeric run
// into a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	hyphen := false
	for _, ch := range strings.ToLower(title) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
			hyphen = false
		} else if !hyphen && b.Len() > 0 {
			b.WriteRune('-')
			hyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// buildMetadata computes the result metadata from the final emitted text:
// whitespace tokens for words, runes for characters.
func buildMetadata(format core.Format, title, id, payload string, at time.Time) *core.Metadata {
	return &core.Metadata{
		Format:         format,
		Title:          title,
		ID:             id,
		GeneratedAt:    at,
		WordCount:      len(strings.Fields(payload)),
		CharacterCount: len([]rune(payload)),
	}
}

// applyContentOptions enforces IncludeImages and IncludeComments on the
// canonical hypertext. Comment highlights are unwrapped (the highlighted
// text is document content) and comment annotations removed when comments
// are excluded.
func applyContentOptions(raw string, opts core.ExportOptions) string {
	if opts.Images() && opts.Comments() {
		return raw
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	if !opts.Images() {
		doc.Find("img, picture, figure").Remove()
	}
	if !opts.Comments() {
		doc.Find("span.comment-highlight, mark.comment-highlight, [data-comment-id]").Each(func(_ int, s *goquery.Selection) {
			s.ReplaceWithSelection(s.Contents())
		})
		doc.Find(".comment-thread").Remove()
	}

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
