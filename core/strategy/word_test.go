package strategy

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftly/exportkit/core"
)

// readDocxPart extracts one named part from a .docx artifact.
func readDocxPart(t *testing.T, artifact []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(artifact), int64(len(artifact)))
	require.NoError(t, err, "artifact must be a readable zip")
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found in package", name)
	return ""
}

func TestWordExportPackageStructure(t *testing.T) {
	e := NewWordExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		Title: "Word Doc",
		HTML:  "<p>hello word</p>",
	}, core.ExportOptions{Format: core.FormatWord})

	require.True(t, res.Success, "error: %s", res.Error)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", res.ContentType)

	ct := readDocxPart(t, res.Artifact, "[Content_Types].xml")
	assert.Contains(t, ct, "wordprocessingml.document.main+xml")

	rels := readDocxPart(t, res.Artifact, "_rels/.rels")
	assert.Contains(t, rels, `Target="word/document.xml"`)

	doc := readDocxPart(t, res.Artifact, "word/document.xml")
	assert.Contains(t, doc, "<w:body>")
	assert.Contains(t, doc, "hello word")

	// The document part must be well-formed XML.
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
}

func TestWordExportTitleAndHeadings(t *testing.T) {
	e := NewWordExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		Title: "My Title",
		HTML:  "<h2>Section</h2><p>body</p>",
	}, core.ExportOptions{Format: core.FormatWord})

	require.True(t, res.Success)
	doc := readDocxPart(t, res.Artifact, "word/document.xml")

	// Title paragraph leads, at the h1 size; the h2 is smaller but still
	// larger than body text.
	assert.Contains(t, doc, "My Title")
	assert.Contains(t, doc, `<w:sz w:val="48"/>`)
	assert.Contains(t, doc, `<w:sz w:val="40"/>`)
	assert.Contains(t, doc, `<w:sz w:val="24"/>`)
}

func TestWordExportRunFormatting(t *testing.T) {
	e := NewWordExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		HTML: "<p>plain <strong>bold</strong> <em>italic</em> <code>mono</code></p>",
	}, core.ExportOptions{Format: core.FormatWord})

	require.True(t, res.Success)
	doc := readDocxPart(t, res.Artifact, "word/document.xml")

	assert.Contains(t, doc, "<w:b/>")
	assert.Contains(t, doc, "<w:i/>")
	assert.Contains(t, doc, `w:ascii="Courier New"`)
	assert.Contains(t, doc, ">bold<")
	assert.Contains(t, doc, ">italic<")
	assert.Contains(t, doc, ">mono<")
}

func TestWordExportListsAndQuotes(t *testing.T) {
	e := NewWordExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		HTML: "<ul><li>first</li><li>second</li></ul><blockquote>quoted</blockquote>",
	}, core.ExportOptions{Format: core.FormatWord})

	require.True(t, res.Success)
	doc := readDocxPart(t, res.Artifact, "word/document.xml")

	assert.Contains(t, doc, "• first")
	assert.Contains(t, doc, "• second")
	assert.Contains(t, doc, `<w:ind w:left="720"/>`)
	assert.Contains(t, doc, "quoted")
}

func TestWordExportImageAltText(t *testing.T) {
	e := NewWordExporter()

	html := `<p>see <img src="a.png" alt="the diagram"></p>`

	res := e.Export(context.Background(), core.ExportableContent{HTML: html},
		core.ExportOptions{Format: core.FormatWord})
	require.True(t, res.Success)
	doc := readDocxPart(t, res.Artifact, "word/document.xml")
	assert.Contains(t, doc, "[image: the diagram]")

	res = e.Export(context.Background(), core.ExportableContent{HTML: html},
		core.ExportOptions{Format: core.FormatWord, IncludeImages: core.Bool(false)})
	require.True(t, res.Success)
	doc = readDocxPart(t, res.Artifact, "word/document.xml")
	assert.NotContains(t, doc, "[image:")
}

func TestWordExportEscapesXML(t *testing.T) {
	e := NewWordExporter()

	res := e.Export(context.Background(), core.ExportableContent{
		HTML: "<p>a &lt; b &amp; c</p>",
	}, core.ExportOptions{Format: core.FormatWord})

	require.True(t, res.Success)
	doc := readDocxPart(t, res.Artifact, "word/document.xml")
	assert.Contains(t, doc, "a &lt; b &amp; c")
}
