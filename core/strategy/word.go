package strategy

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/normalize"
)

// WordExporter emits the minimal valid OOXML package a word processor opens
// without a repair prompt: content types, package relationships, and one
// document part with direct-formatted paragraphs.
type WordExporter struct {
	norm *normalize.Normalizer
}

// NewWordExporter creates a WordExporter.
func NewWordExporter() *WordExporter {
	return &WordExporter{norm: normalize.New()}
}

// SupportedFormats returns the word-processor format key.
func (e *WordExporter) SupportedFormats() []core.Format {
	return []core.Format{core.FormatWord}
}

// Export converts the envelope into a .docx artifact.
func (e *WordExporter) Export(ctx context.Context, content core.ExportableContent, opts core.ExportOptions) core.ExportResult {
	raw, err := e.norm.Resolve(content)
	if err != nil {
		return core.Failure(err)
	}

	title := effectiveTitle(content)
	now := time.Now()

	paras, text := extractParagraphs(applyContentOptions(raw, opts), title, opts)
	artifact, err := packageDocx(paras, opts)
	if err != nil {
		return core.Failure(fmt.Errorf("%w: packaging document: %v", core.ErrRendering, err))
	}

	return core.ExportResult{
		Success:     true,
		Filename:    filename(title, opts.CustomFilename, core.FormatWord),
		Artifact:    artifact,
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Metadata:    buildMetadata(core.FormatWord, title, content.ID, text, now),
	}
}

// run is one formatted span inside a paragraph.
type run struct {
	text   string
	bold   bool
	italic bool
	code   bool
}

// paragraph is one block-level element headed for the document part.
type paragraph struct {
	runs    []run
	heading int  // 1-6, 0 for body text
	list    bool // bulleted/numbered item
	quote   bool
}

// blockSelector matches the block elements carried into the document.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote"

// extractParagraphs walks the hypertext's block elements into paragraphs
// with bold/italic/code runs. Images are reduced to their alt text (the
// minimal envelope carries no media parts); the second return value is the
// plain text used for metadata counts.
func extractParagraphs(raw, title string, opts core.ExportOptions) ([]paragraph, string) {
	paras := []paragraph{{heading: 1, runs: []run{{text: title, bold: true}}}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		paras = append(paras, paragraph{runs: []run{{text: raw}}})
	} else {
		doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
			// Nested blocks are visited on their own; skip containers whose
			// only content arrives through a nested match.
			if s.Children().FilterFunction(func(_ int, c *goquery.Selection) bool {
				return c.Is(blockSelector)
			}).Length() > 0 && strings.TrimSpace(s.Clone().Children().Remove().End().Text()) == "" {
				return
			}

			p := paragraph{}
			switch goquery.NodeName(s) {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				p.heading = int(goquery.NodeName(s)[1] - '0')
			case "li":
				p.list = true
			case "blockquote":
				p.quote = true
			}
			p.runs = extractRuns(s, opts)
			if len(p.runs) > 0 {
				paras = append(paras, p)
			}
		})
	}

	var text strings.Builder
	for _, p := range paras {
		for _, r := range p.runs {
			text.WriteString(r.text)
		}
		text.WriteString("\n")
	}
	return paras, text.String()
}

// extractRuns flattens one block element's inline content into runs.
func extractRuns(s *goquery.Selection, opts core.ExportOptions) []run {
	var runs []run
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch name {
		case "#text":
			if t := collapseSpaces(c.Text()); t != "" {
				runs = append(runs, run{text: t})
			}
		case "strong", "b":
			if t := collapseSpaces(c.Text()); t != "" {
				runs = append(runs, run{text: t, bold: true})
			}
		case "em", "i":
			if t := collapseSpaces(c.Text()); t != "" {
				runs = append(runs, run{text: t, italic: true})
			}
		case "code":
			if t := collapseSpaces(c.Text()); t != "" {
				runs = append(runs, run{text: t, code: true})
			}
		case "img":
			if opts.Images() {
				if alt, _ := c.Attr("alt"); alt != "" {
					runs = append(runs, run{text: "[image: " + alt + "]", italic: true})
				}
			}
		case "br":
			runs = append(runs, run{text: " "})
		default:
			if t := collapseSpaces(c.Text()); t != "" {
				runs = append(runs, run{text: t})
			}
		}
	})
	return runs
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Heading sizes in half-points, strictly decreasing.
var headingHalfPoints = map[int]int{1: 48, 2: 40, 3: 34, 4: 30, 5: 26, 6: 24}

// packageDocx builds the three-part OOXML zip.
func packageDocx(paras []paragraph, opts core.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(paras, opts)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// documentXML renders the document part. Formatting is direct (run and
// paragraph properties); no styles part is needed for a valid package.
func documentXML(paras []paragraph, opts core.ExportOptions) string {
	baseHalf := int(core.DefaultFontSize * 2)
	if opts.FontSize > 0 {
		baseHalf = int(opts.FontSize * 2)
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, p := range paras {
		b.WriteString("<w:p>")
		if p.list || p.quote {
			b.WriteString(`<w:pPr><w:ind w:left="720"/></w:pPr>`)
		}
		for i, r := range p.runs {
			b.WriteString("<w:r><w:rPr>")
			if r.bold || p.heading > 0 {
				b.WriteString("<w:b/>")
			}
			if r.italic || p.quote {
				b.WriteString("<w:i/>")
			}
			if r.code {
				b.WriteString(`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/>`)
			}
			half := baseHalf
			if p.heading > 0 {
				half = headingHalfPoints[p.heading]
			}
			b.WriteString(`<w:sz w:val="` + strconv.Itoa(half) + `"/>`)
			b.WriteString("</w:rPr>")

			text := r.text
			if p.list && i == 0 {
				text = "• " + text
			}
			b.WriteString(`<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t>`)
			b.WriteString("</w:r>")
		}
		b.WriteString("</w:p>")
	}

	b.WriteString(`<w:sectPr/></w:body></w:document>`)
	return b.String()
}

// xmlEscape escapes text content for the document part.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
