package strategy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftly/exportkit/core"
)

func TestTextExport(t *testing.T) {
	e := NewTextExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		Title: "Plain Doc",
		HTML:  "<h1>Heading</h1><p>Some <strong>bold</strong> and <em>italic</em> text.</p>",
	}, core.ExportOptions{Format: core.FormatText})

	require.True(t, res.Success, "error: %s", res.Error)
	out := string(res.Artifact)

	assert.Contains(t, out, "Plain Doc") // banner
	assert.Contains(t, out, strings.Repeat("=", 40))
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "Some bold and italic text.")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "<")
	assert.Equal(t, "text/plain; charset=utf-8", res.ContentType)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTextExportWithoutMetadataBanner(t *testing.T) {
	e := NewTextExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		Title: "Plain Doc",
		HTML:  "<p>body only</p>",
	}, core.ExportOptions{Format: core.FormatText, IncludeMetadata: core.Bool(false)})

	require.True(t, res.Success)
	out := string(res.Artifact)
	assert.NotContains(t, out, "=====")
	assert.NotContains(t, out, "Exported:")
	assert.Contains(t, out, "body only")
}

func TestTextExportStripsEmbeddedBlocks(t *testing.T) {
	e := NewTextExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		HTML: `<style>p { color: red }</style><script>alert(1)</script><p>visible</p>`,
	}, core.ExportOptions{Format: core.FormatText, IncludeMetadata: core.Bool(false)})

	require.True(t, res.Success)
	out := string(res.Artifact)
	assert.NotContains(t, out, "color: red")
	assert.NotContains(t, out, "alert")
	assert.Contains(t, out, "visible")
}

func TestTextExportFlattensStructure(t *testing.T) {
	e := NewTextExporter()

	html := `<ul><li>first item</li><li>second item</li></ul>
		<blockquote>a wise quote</blockquote>
		<table><tr><th>name</th><th>count</th></tr><tr><td>a</td><td>1</td></tr></table>
		<pre><code>rm -rf build</code></pre>`

	res := e.Export(context.Background(), core.ExportableContent{HTML: html},
		core.ExportOptions{Format: core.FormatText, IncludeMetadata: core.Bool(false)})

	require.True(t, res.Success)
	out := string(res.Artifact)

	assert.Contains(t, out, "- first item")
	assert.Contains(t, out, "- second item")
	assert.Contains(t, out, "a wise quote")
	assert.NotContains(t, out, ">")
	assert.Contains(t, out, "name  count")
	assert.NotContains(t, out, "|")
	assert.Contains(t, out, "rm -rf build")
	assert.NotContains(t, out, "```")
}

func TestTextExportMetadataCounts(t *testing.T) {
	e := NewTextExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		Title: "Doc",
		HTML:  "<p>one two three</p>",
	}, core.ExportOptions{Format: core.FormatText, IncludeMetadata: core.Bool(false)})

	require.True(t, res.Success)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, 3, res.Metadata.WordCount)
	assert.Equal(t, len(res.Artifact), res.Metadata.CharacterCount)
}

func TestTextExportEmptyEnvelope(t *testing.T) {
	e := NewTextExporter()

	res := e.Export(context.Background(), core.ExportableContent{}, core.ExportOptions{Format: core.FormatText})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "content resolution failed")
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a\n\nb", cleanWhitespace("a\r\n\n\n\n\nb"))
	assert.Equal(t, "line", cleanWhitespace("line   \t\n\n"))
}

func TestFlattenTableRow(t *testing.T) {
	assert.Equal(t, "a  b  c", flattenTableRow("| a | b | c |"))
	assert.Equal(t, "", flattenTableRow("| --- | :-: | --- |"))
	assert.Equal(t, "bold", flattenTableRow("| **bold** |"))
}
