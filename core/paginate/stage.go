package paginate

import (
	stdhtml "html"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/draftly/exportkit/core"
)

// Staging surface dimensions, in points. The surface is deliberately wide
// with generous padding; content is measured here at the oversampled
// resolution and scaled down to the printable width later.
const (
	virtualWidth  = 800.0
	stagePadding  = 40.0
	oversample    = 2.0
	stagingHeight = 14400.0 // tall enough that staging never paginates itself
	lineSpacing   = 1.45
)

// staging is the off-screen, non-interactive surface one export stages its
// document on. It owns a measuring PDF (never emitted) and the staged
// hypertext: title block, optional metadata header, body, and footer.
// Each run stages its own surface, so concurrent exports share nothing.
type staging struct {
	doc        *gofpdf.Fpdf
	html       string
	fontFamily string
	fontSize   float64
	released   bool
}

// newStaging builds the staged document and its measuring surface using the
// requested font family and size.
func newStaging(in Input) *staging {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: virtualWidth * oversample, Ht: stagingHeight},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	fontSize := in.Options.FontSize
	if fontSize <= 0 {
		fontSize = core.DefaultFontSize
	}

	return &staging{
		doc:        doc,
		html:       buildStagedHTML(in),
		fontFamily: coreFontFor(in.Options.FontFamily),
		fontSize:   fontSize,
	}
}

// contentWidth is the measurable width of the staged surface in raster units.
func (s *staging) contentWidth() float64 {
	return (virtualWidth - 2*stagePadding) * oversample
}

// wrap splits text into lines that fit the given width using the surface's
// actual font metrics.
func (s *staging) wrap(text, family, style string, sizePt, width float64) []string {
	s.doc.SetFont(family, style, sizePt)
	return s.doc.SplitText(text, width)
}

// width measures the rendered width of a single line.
func (s *staging) width(text, family, style string, sizePt float64) float64 {
	s.doc.SetFont(family, style, sizePt)
	return s.doc.GetStringWidth(text)
}

// cleanup releases the staging surface. Safe to call more than once; it runs
// on every pipeline exit path.
func (s *staging) cleanup() {
	if s.released {
		return
	}
	s.released = true
	s.doc.Close()
}

// buildStagedHTML injects the title block, the optional metadata header, the
// resolved body, and the export-timestamp footer around the content.
func buildStagedHTML(in Input) string {
	ts := in.GeneratedAt.Format("2006-01-02 15:04")

	var b strings.Builder
	b.WriteString(`<article class="export-staging">`)
	if in.Title != "" {
		b.WriteString(`<h1 class="export-title">` + stdhtml.EscapeString(in.Title) + `</h1>`)
	}
	if in.Options.WithMetadata() {
		b.WriteString(`<p class="export-meta">Exported ` + ts + `</p>`)
	}
	b.WriteString(in.HTML)
	b.WriteString(`<hr/><p class="export-footer">Exported ` + ts + `</p>`)
	b.WriteString(`</article>`)
	return b.String()
}

// coreFontFor maps a requested font family onto the PDF core fonts.
func coreFontFor(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"),
		strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "Times"
	default:
		return "Helvetica"
	}
}
