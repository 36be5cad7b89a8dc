package paginate

import (
	"fmt"

	"github.com/draftly/exportkit/core"
)

// PtToMm converts margins expressed in points to page millimetres.
const PtToMm = 0.352778

// pageSizesMm holds the physical dimensions of each page preset.
var pageSizesMm = map[core.PageSize][2]float64{
	core.PageSizeA4:     {210.0, 297.0},
	core.PageSizeLetter: {215.9, 279.4},
	core.PageSizeLegal:  {215.9, 355.6},
}

// PageGeometry is the physical layout of one output page in millimetres:
// the page itself, the margins, and the printable area the slices are
// drawn into.
type PageGeometry struct {
	Width  float64
	Height float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	PrintableWidth  float64
	PrintableHeight float64
}

// GeometryFor computes the page geometry for a preset and point margins.
func GeometryFor(size core.PageSize, margins core.Margins) (PageGeometry, error) {
	dims, ok := pageSizesMm[size]
	if !ok {
		return PageGeometry{}, fmt.Errorf("unknown page size %q", size)
	}

	g := PageGeometry{
		Width:        dims[0],
		Height:       dims[1],
		MarginTop:    margins.Top * PtToMm,
		MarginRight:  margins.Right * PtToMm,
		MarginBottom: margins.Bottom * PtToMm,
		MarginLeft:   margins.Left * PtToMm,
	}
	g.PrintableWidth = g.Width - g.MarginLeft - g.MarginRight
	g.PrintableHeight = g.Height - g.MarginTop - g.MarginBottom

	if g.PrintableWidth <= 0 || g.PrintableHeight <= 0 {
		return PageGeometry{}, fmt.Errorf("margins leave no printable area on %s", size)
	}
	return g, nil
}
