package exporter

import (
	"fmt"

	"github.com/draftly/exportkit/core"
)

// validateOptions checks a partial options object against the registry and
// the option bounds. It reports every problem, not just the first.
func validateOptions(opts core.ExportOptions, registry map[core.Format]core.Exporter) []string {
	var errs []string

	if opts.Format != "" {
		if _, ok := registry[opts.Format]; !ok {
			errs = append(errs, fmt.Sprintf("unsupported format %q", opts.Format))
		}
	}

	if opts.PageSize != "" {
		switch opts.PageSize {
		case core.PageSizeA4, core.PageSizeLetter, core.PageSizeLegal:
		default:
			errs = append(errs, fmt.Sprintf("unsupported page size %q", opts.PageSize))
		}
	}

	if opts.FontSize != 0 && (opts.FontSize < core.MinFontSize || opts.FontSize > core.MaxFontSize) {
		errs = append(errs, fmt.Sprintf("font size %g out of range [%g, %g]", opts.FontSize, core.MinFontSize, core.MaxFontSize))
	}

	if m := opts.Margins; m != nil {
		for _, side := range []struct {
			name  string
			value float64
		}{
			{"top", m.Top}, {"right", m.Right}, {"bottom", m.Bottom}, {"left", m.Left},
		} {
			if side.value < core.MinMargin || side.value > core.MaxMargin {
				errs = append(errs, fmt.Sprintf("%s margin %g out of range [%g, %g]", side.name, side.value, core.MinMargin, core.MaxMargin))
			}
		}
	}

	return errs
}

// prepareOptions is the single validate-then-default pass: options are
// checked first, then per-format defaults fill every absent field, so
// strategies never apply defaults of their own.
func prepareOptions(opts core.ExportOptions, registry map[core.Format]core.Exporter) (core.ExportOptions, []string) {
	if errs := validateOptions(opts, registry); len(errs) > 0 {
		return opts, errs
	}

	if opts.PageSize == "" {
		opts.PageSize = core.PageSizeA4
	}
	if opts.Margins == nil {
		m := core.UniformMargins(core.DefaultMarginPt)
		opts.Margins = &m
	}
	if opts.FontSize == 0 {
		opts.FontSize = core.DefaultFontSize
	}
	if opts.FontFamily == "" {
		opts.FontFamily = core.DefaultFontFamily
	}
	if opts.IncludeImages == nil {
		opts.IncludeImages = core.Bool(true)
	}
	if opts.IncludeMetadata == nil {
		opts.IncludeMetadata = core.Bool(true)
	}
	if opts.IncludeComments == nil {
		// Comments stay in formats meant for further editing, out of the
		// read-only ones.
		switch opts.Format {
		case core.FormatHTML, core.FormatWord:
			opts.IncludeComments = core.Bool(true)
		default:
			opts.IncludeComments = core.Bool(false)
		}
	}

	return opts, nil
}
