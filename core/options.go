package core

// PageSize is one of the supported page presets for paginated output.
type PageSize string

// Supported page presets.
const (
	PageSizeA4     PageSize = "A4"
	PageSizeLetter PageSize = "Letter"
	PageSizeLegal  PageSize = "Legal"
)

// Margins holds per-side page margins in points.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargins builds a Margins with the same value on every side.
func UniformMargins(pt float64) Margins {
	return Margins{Top: pt, Right: pt, Bottom: pt, Left: pt}
}

// Option bounds and defaults shared by validation and defaulting.
const (
	MinFontSize       = 8.0
	MaxFontSize       = 72.0
	MinMargin         = 0.0
	MaxMargin         = 100.0
	DefaultFontSize   = 12.0
	DefaultMarginPt   = 20.0
	DefaultFontFamily = "Helvetica"
)

// ExportOptions controls one export call. All fields are optional; the
// coordinator validates and applies per-format defaults before any strategy
// sees them. The boolean fields are pointers so an unset option is
// distinguishable from an explicit false.
type ExportOptions struct {
	Format          Format
	IncludeImages   *bool
	IncludeComments *bool
	IncludeMetadata *bool
	PageSize        PageSize
	Margins         *Margins
	FontSize        float64
	FontFamily      string
	CustomFilename  string
}

// Images reports the effective IncludeImages value (default true).
func (o ExportOptions) Images() bool {
	if o.IncludeImages == nil {
		return true
	}
	return *o.IncludeImages
}

// Comments reports the effective IncludeComments value (default false).
func (o ExportOptions) Comments() bool {
	if o.IncludeComments == nil {
		return false
	}
	return *o.IncludeComments
}

// WithMetadata reports the effective IncludeMetadata value (default true).
func (o ExportOptions) WithMetadata() bool {
	if o.IncludeMetadata == nil {
		return true
	}
	return *o.IncludeMetadata
}

// EffectiveMargins returns the requested margins, or the 20 pt default.
func (o ExportOptions) EffectiveMargins() Margins {
	if o.Margins == nil {
		return UniformMargins(DefaultMarginPt)
	}
	return *o.Margins
}

// Bool is a convenience for building the optional boolean fields.
func Bool(v bool) *bool {
	return &v
}

// ValidationResult is the outcome of validating a partial options object.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
