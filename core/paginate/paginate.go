package paginate

// pageSlice is one page-sized cut of the raster, in raster units.
// top is inclusive, bottom exclusive; consecutive slices tile the raster
// with no gaps and no overlaps.
type pageSlice struct {
	top    float64
	bottom float64
}

// sliceEpsilon absorbs float accumulation error when the content height
// lands exactly on a page multiple; without it the walk could emit a sliver
// page past the last full one.
const sliceEpsilon = 1e-9

// computeSlices scales the raster uniformly so its width equals the
// printable width, then walks it top to bottom in printable-height
// increments. A remainder shorter than a full page becomes a partial last
// page. Returns the mm-per-raster-unit scale and the slices.
func computeSlices(r *raster, geom PageGeometry) (float64, []pageSlice) {
	scale := geom.PrintableWidth / r.width
	pageRU := geom.PrintableHeight / scale

	if r.height <= 0 {
		return scale, []pageSlice{{top: 0, bottom: 0}}
	}

	var slices []pageSlice
	for top := 0.0; top < r.height-sliceEpsilon; top += pageRU {
		bottom := top + pageRU
		if bottom > r.height {
			bottom = r.height
		}
		slices = append(slices, pageSlice{top: top, bottom: bottom})
	}
	return scale, slices
}
