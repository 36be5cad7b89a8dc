package exporter

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/strategy"
)

func testCoordinator() *Coordinator {
	c := New(zerolog.Nop())
	// PDF exports in tests skip the post-load settle wait.
	if pdf, ok := c.strategies[core.FormatPDF].(*strategy.PDFExporter); ok {
		pdf.Pipeline().SettleDelay = 0
	}
	return c
}

func TestSupportedFormats(t *testing.T) {
	c := testCoordinator()

	got := c.SupportedFormats()
	assert.ElementsMatch(t, []core.Format{
		core.FormatText, core.FormatMarkdown, core.FormatHTML, core.FormatPDF, core.FormatWord,
	}, got)
	assert.True(t, sortedFormats(got), "formats must come back sorted")
}

func sortedFormats(fs []core.Format) bool {
	for i := 1; i < len(fs); i++ {
		if fs[i-1] > fs[i] {
			return false
		}
	}
	return true
}

func TestExportEveryFormat(t *testing.T) {
	c := testCoordinator()
	content := core.ExportableContent{
		Title: "Full Sweep",
		HTML:  "<h1>Sweep</h1><p>one two three four five</p>",
	}

	for _, format := range c.SupportedFormats() {
		format := format
		t.Run(string(format), func(t *testing.T) {
			res := c.Export(context.Background(), content, core.ExportOptions{Format: format})

			require.True(t, res.Success, "error: %s", res.Error)
			assert.True(t, strings.HasSuffix(res.Filename, format.Extension()),
				"filename %q must end in %s", res.Filename, format.Extension())
			assert.NotEmpty(t, res.Artifact)
			assert.NotEmpty(t, res.ContentType)

			require.NotNil(t, res.Metadata)
			assert.Equal(t, format, res.Metadata.Format)
			assert.Equal(t, "Full Sweep", res.Metadata.Title)
			assert.NotEmpty(t, res.Metadata.ID, "missing envelope ID must be generated")
			assert.Greater(t, res.Metadata.WordCount, 0)
			assert.Greater(t, res.Metadata.CharacterCount, 0)
		})
	}
}

func TestExportRejectsEmptyEnvelope(t *testing.T) {
	c := testCoordinator()

	res := c.Export(context.Background(), core.ExportableContent{}, core.ExportOptions{Format: core.FormatText})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no exportable source")

	res = c.Export(context.Background(), core.ExportableContent{HTML: "  \n "}, core.ExportOptions{Format: core.FormatText})
	assert.False(t, res.Success)
}

func TestExportUnsupportedFormat(t *testing.T) {
	c := testCoordinator()

	res := c.Export(context.Background(),
		core.ExportableContent{HTML: "<p>x</p>"},
		core.ExportOptions{Format: "epub"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, `"epub"`)
}

func TestExportValidationFailure(t *testing.T) {
	c := testCoordinator()

	res := c.Export(context.Background(),
		core.ExportableContent{HTML: "<p>x</p>"},
		core.ExportOptions{Format: core.FormatText, FontSize: 200, Margins: &core.Margins{Top: 150}})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "font size 200 out of range")
	assert.Contains(t, res.Error, "top margin 150 out of range")
}

func TestExportCustomFilename(t *testing.T) {
	c := testCoordinator()

	res := c.Export(context.Background(),
		core.ExportableContent{Title: "Ignored For Naming", HTML: "<p>x</p>"},
		core.ExportOptions{Format: core.FormatMarkdown, CustomFilename: "weekly-report"})

	require.True(t, res.Success)
	assert.Equal(t, "weekly-report.md", res.Filename)
}

func TestExportDefaultTitle(t *testing.T) {
	c := testCoordinator()

	res := c.Export(context.Background(),
		core.ExportableContent{HTML: "<p>x</p>"},
		core.ExportOptions{Format: core.FormatText})

	require.True(t, res.Success)
	assert.Equal(t, strategy.DefaultTitle, res.Metadata.Title)
	assert.True(t, strings.HasPrefix(res.Filename, "untitled-article-"))
}

func TestExportKeepsProvidedID(t *testing.T) {
	c := testCoordinator()

	res := c.Export(context.Background(),
		core.ExportableContent{HTML: "<p>x</p>", ID: "doc-42"},
		core.ExportOptions{Format: core.FormatText})

	require.True(t, res.Success)
	assert.Equal(t, "doc-42", res.Metadata.ID)
}

func TestExportDocument(t *testing.T) {
	c := testCoordinator()

	res := c.ExportDocument(context.Background(),
		&stubDocument{html: "<p>live content here</p>"},
		"Live Doc",
		core.ExportOptions{Format: core.FormatText, IncludeMetadata: core.Bool(false)})

	require.True(t, res.Success)
	assert.Contains(t, string(res.Artifact), "live content here")
	assert.Equal(t, "Live Doc", res.Metadata.Title)
}

type stubDocument struct{ html string }

func (d *stubDocument) HTML() (string, error)      { return d.html, nil }
func (d *stubDocument) PlainText() (string, error) { return d.html, nil }

func TestExportMarkdown(t *testing.T) {
	c := testCoordinator()

	res := c.ExportMarkdown(context.Background(),
		"---\ntitle: Front Matter Title\n---\n# Heading\n\nbody words",
		"",
		core.ExportOptions{Format: core.FormatHTML})

	require.True(t, res.Success, "error: %s", res.Error)
	assert.Equal(t, "Front Matter Title", res.Metadata.Title)
	assert.Contains(t, string(res.Artifact), "body words")
	assert.NotContains(t, string(res.Artifact), "title: Front Matter Title")
}

func TestExportMarkdownExplicitTitleWins(t *testing.T) {
	c := testCoordinator()

	res := c.ExportMarkdown(context.Background(),
		"---\ntitle: From Front Matter\n---\nbody",
		"Explicit",
		core.ExportOptions{Format: core.FormatText})

	require.True(t, res.Success)
	assert.Equal(t, "Explicit", res.Metadata.Title)
}

func TestValidateOptions(t *testing.T) {
	c := testCoordinator()

	t.Run("defaults are valid", func(t *testing.T) {
		v := c.ValidateOptions(core.ExportOptions{Format: core.FormatPDF})
		assert.True(t, v.Valid)
		assert.Empty(t, v.Errors)
	})

	t.Run("reports every problem", func(t *testing.T) {
		v := c.ValidateOptions(core.ExportOptions{
			Format:   "epub",
			PageSize: "Tabloid",
			FontSize: 4,
			Margins:  &core.Margins{Top: -1, Left: 200},
		})
		assert.False(t, v.Valid)
		assert.Len(t, v.Errors, 5)
	})

	t.Run("boundary values pass", func(t *testing.T) {
		v := c.ValidateOptions(core.ExportOptions{
			Format:   core.FormatText,
			FontSize: core.MaxFontSize,
			Margins:  &core.Margins{Top: core.MaxMargin},
		})
		assert.True(t, v.Valid)
	})
}

func TestPrepareOptionsDefaults(t *testing.T) {
	c := testCoordinator()

	prepared, errs := prepareOptions(core.ExportOptions{Format: core.FormatText}, c.strategies)
	require.Empty(t, errs)

	assert.Equal(t, core.PageSizeA4, prepared.PageSize)
	assert.Equal(t, core.DefaultFontSize, prepared.FontSize)
	assert.Equal(t, core.DefaultFontFamily, prepared.FontFamily)
	require.NotNil(t, prepared.Margins)
	assert.Equal(t, core.UniformMargins(core.DefaultMarginPt), *prepared.Margins)
	assert.True(t, prepared.Images())
	assert.True(t, prepared.WithMetadata())
	assert.False(t, prepared.Comments(), "comments default off for plain text")
}

func TestPrepareOptionsCommentDefaultPerFormat(t *testing.T) {
	c := testCoordinator()

	for _, tc := range []struct {
		format core.Format
		want   bool
	}{
		{core.FormatHTML, true},
		{core.FormatWord, true},
		{core.FormatText, false},
		{core.FormatMarkdown, false},
		{core.FormatPDF, false},
	} {
		prepared, errs := prepareOptions(core.ExportOptions{Format: tc.format}, c.strategies)
		require.Empty(t, errs)
		assert.Equal(t, tc.want, prepared.Comments(), "format %s", tc.format)
	}
}

func TestPrepareOptionsKeepsExplicitValues(t *testing.T) {
	c := testCoordinator()

	prepared, errs := prepareOptions(core.ExportOptions{
		Format:          core.FormatHTML,
		FontSize:        14,
		IncludeComments: core.Bool(false),
	}, c.strategies)
	require.Empty(t, errs)
	assert.Equal(t, 14.0, prepared.FontSize)
	assert.False(t, prepared.Comments())
}

func TestDefaultCoordinatorIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
