package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/draftly/exportkit/core"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Great Article", "my-great-article"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"Q3 Report: Revenue & Growth!", "q3-report-revenue-growth"},
		{"---", "untitled"},
		{"", "untitled"},
		{"ALL CAPS", "all-caps"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.in), "title %q", tc.in)
	}
}

func TestFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	assert.Equal(t, "my-doc-"+today+".pdf", filename("My Doc", "", core.FormatPDF))
	assert.Equal(t, "report.md", filename("ignored", "report", core.FormatMarkdown))
	assert.Equal(t, "report.md", filename("ignored", "report.md", core.FormatMarkdown))
	assert.Equal(t, "untitled-"+today+".txt", filename("!!!", "", core.FormatText))
}

func TestEffectiveTitle(t *testing.T) {
	assert.Equal(t, "Given", effectiveTitle(core.ExportableContent{Title: "Given"}))
	assert.Equal(t, DefaultTitle, effectiveTitle(core.ExportableContent{}))
	assert.Equal(t, DefaultTitle, effectiveTitle(core.ExportableContent{Title: "   "}))
}

func TestBuildMetadata(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := buildMetadata(core.FormatText, "Doc", "id-1", "three little words", at)

	assert.Equal(t, core.FormatText, m.Format)
	assert.Equal(t, "Doc", m.Title)
	assert.Equal(t, "id-1", m.ID)
	assert.Equal(t, at, m.GeneratedAt)
	assert.Equal(t, 3, m.WordCount)
	assert.Equal(t, len("three little words"), m.CharacterCount)
}

func TestBuildMetadataCountsRunes(t *testing.T) {
	m := buildMetadata(core.FormatText, "Doc", "", "héllo wörld", time.Now())
	assert.Equal(t, 2, m.WordCount)
	assert.Equal(t, 11, m.CharacterCount)
}

func TestApplyContentOptionsImages(t *testing.T) {
	raw := `<p>text</p><img src="a.png"><figure><img src="b.png"></figure>`

	out := applyContentOptions(raw, core.ExportOptions{IncludeImages: core.Bool(false)})
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<figure")
	assert.Contains(t, out, "<p>text</p>")

	out = applyContentOptions(raw, core.ExportOptions{IncludeImages: core.Bool(true), IncludeComments: core.Bool(true)})
	assert.Contains(t, out, "<img")
}

func TestApplyContentOptionsComments(t *testing.T) {
	raw := `<p>plain <span class="comment-highlight" data-comment-id="c1">highlighted</span> text</p>` +
		`<div class="comment-thread"><p>reviewer note</p></div>`

	out := applyContentOptions(raw, core.ExportOptions{IncludeComments: core.Bool(false)})
	assert.NotContains(t, out, "comment-highlight")
	assert.NotContains(t, out, "reviewer note")
	assert.Contains(t, out, "plain highlighted text")

	out = applyContentOptions(raw, core.ExportOptions{IncludeComments: core.Bool(true)})
	assert.Contains(t, out, "comment-highlight")
	assert.Contains(t, out, "reviewer note")
}
