package paginate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// compose emits the raster slices as PDF pages. Each slice becomes one page;
// every block intersecting the slice is drawn at the page's top margin
// offset, inside a printable-area clip so boundary-crossing blocks are
// visually cut exactly at the slice edge.
func compose(r *raster, geom PageGeometry, slices []pageSlice, scale float64, st *staging, assets map[string]*asset) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: geom.Width, Ht: geom.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	style := defaultStyleSheet()

	for _, a := range assets {
		if a.broken {
			continue
		}
		pdf.RegisterImageOptionsReader(a.src, gofpdf.ImageOptions{ImageType: a.imgType}, bytes.NewReader(a.data))
	}

	for _, sl := range slices {
		pdf.AddPage()

		// Full-page background fill.
		pdf.SetFillColor(style.background.r, style.background.g, style.background.b)
		pdf.Rect(0, 0, geom.Width, geom.Height, "F")

		pdf.ClipRect(geom.MarginLeft, geom.MarginTop, geom.PrintableWidth, geom.PrintableHeight, false)
		for _, b := range r.blocks {
			if b.y+b.h <= sl.top || b.y >= sl.bottom {
				continue
			}
			y := geom.MarginTop + (b.y-sl.top)*scale
			drawBlock(pdf, tr, b, geom, y, scale, style, st.fontFamily)
		}
		pdf.ClipEnd()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("emitting PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBlock renders one block at the given page Y. All raster-unit values
// are converted to millimetres with the uniform scale; font sizes go back
// to points for gofpdf.
func drawBlock(pdf *gofpdf.Fpdf, tr func(string) string, b *block, geom PageGeometry, y, scale float64, style styleSheet, bodyFont string) {
	x := geom.MarginLeft
	w := geom.PrintableWidth
	fontPt := b.fontPt * scale / PtToMm
	lineH := b.fontPt * lineSpacing * scale

	switch b.kind {
	case blockRule:
		pdf.SetDrawColor(style.rule.r, style.rule.g, style.rule.b)
		pdf.SetLineWidth(0.3)
		mid := y + b.h*scale/2
		pdf.Line(x, mid, x+w, mid)

	case blockImage:
		pdf.ImageOptions(b.img.src, x, y, b.imgW*scale, b.imgH*scale, false, gofpdf.ImageOptions{ImageType: b.img.imgType}, 0, "")

	case blockCode:
		pdf.SetFillColor(style.codeFill.r, style.codeFill.g, style.codeFill.b)
		pdf.Rect(x, y, w, b.h*scale, "F")
		pdf.SetTextColor(style.codeText.r, style.codeText.g, style.codeText.b)
		pdf.SetFont("Courier", "", fontPt)
		drawLines(pdf, tr, b.lines, x+codePad*scale, y+codePad*scale, lineH)

	case blockQuote:
		pdf.SetFillColor(style.quoteAccent.r, style.quoteAccent.g, style.quoteAccent.b)
		pdf.Rect(x, y, 1.2, b.h*scale, "F")
		pdf.SetTextColor(style.muted.r, style.muted.g, style.muted.b)
		pdf.SetFont(b.family, b.style, fontPt)
		drawLines(pdf, tr, b.lines, x+b.indent*scale, y, lineH)

	case blockTable:
		drawTable(pdf, tr, b, x, y, w, scale, style)

	case blockHeading:
		pdf.SetTextColor(style.text.r, style.text.g, style.text.b)
		pdf.SetFont(b.family, "B", fontPt)
		drawLines(pdf, tr, b.lines, x, y, lineH)

	default: // paragraphs and list items
		pdf.SetTextColor(style.text.r, style.text.g, style.text.b)
		pdf.SetFont(b.family, b.style, fontPt)
		drawLines(pdf, tr, b.lines, x+b.indent*scale, y, lineH)
	}
}

// drawLines writes wrapped lines at fixed line height from the given origin.
func drawLines(pdf *gofpdf.Fpdf, tr func(string) string, lines []string, x, y, lineH float64) {
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.SetXY(x, y+float64(i)*lineH)
		pdf.CellFormat(0, lineH, tr(line), "", 0, "L", false, 0, "")
	}
}

// drawTable renders a bordered grid with a shaded first row.
func drawTable(pdf *gofpdf.Fpdf, tr func(string) string, b *block, x, y, w, scale float64, style styleSheet) {
	cols := 0
	for _, row := range b.rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	fontPt := b.fontPt * scale / PtToMm
	lineH := b.fontPt * lineSpacing * scale
	colW := w / float64(cols)

	pdf.SetDrawColor(style.tableBorder.r, style.tableBorder.g, style.tableBorder.b)
	pdf.SetLineWidth(0.2)

	rowY := y
	for i, row := range b.rows {
		rowH := b.rowH[i] * scale
		for c := 0; c < cols; c++ {
			cellX := x + float64(c)*colW
			if i == 0 {
				pdf.SetFillColor(style.tableHead.r, style.tableHead.g, style.tableHead.b)
				pdf.Rect(cellX, rowY, colW, rowH, "FD")
				pdf.SetFont(b.family, "B", fontPt)
			} else {
				pdf.Rect(cellX, rowY, colW, rowH, "D")
				pdf.SetFont(b.family, "", fontPt)
			}
			if c < len(row) && row[c] != "" {
				pdf.SetTextColor(style.text.r, style.text.g, style.text.b)
				lines := pdf.SplitText(row[c], colW-2*cellPad*scale)
				drawLines(pdf, tr, lines, cellX+cellPad*scale, rowY+cellPad*scale, lineH)
			}
		}
		rowY += rowH
	}
}
