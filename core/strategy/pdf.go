package strategy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/normalize"
	"github.com/draftly/exportkit/core/paginate"
)

// PDFExporter emits a paginated page-description artifact through the
// pagination pipeline.
type PDFExporter struct {
	norm     *normalize.Normalizer
	pipeline *paginate.Pipeline
}

// NewPDFExporter creates a PDFExporter.
func NewPDFExporter(log zerolog.Logger) *PDFExporter {
	return &PDFExporter{
		norm:     normalize.New(),
		pipeline: paginate.New(log),
	}
}

// Pipeline exposes the underlying pipeline so callers can tune its timing.
func (e *PDFExporter) Pipeline() *paginate.Pipeline {
	return e.pipeline
}

// SupportedFormats returns the page-description format key.
func (e *PDFExporter) SupportedFormats() []core.Format {
	return []core.Format{core.FormatPDF}
}

// Export converts the envelope into a paginated PDF. A pipeline failure
// yields a failure result with the underlying message; no partial artifact
// is ever returned.
func (e *PDFExporter) Export(ctx context.Context, content core.ExportableContent, opts core.ExportOptions) core.ExportResult {
	raw, err := e.norm.Resolve(content)
	if err != nil {
		return core.Failure(err)
	}

	title := effectiveTitle(content)
	now := time.Now()

	out, err := e.pipeline.Run(ctx, paginate.Input{
		Title:       title,
		HTML:        applyContentOptions(raw, opts),
		GeneratedAt: now,
		Options:     opts,
	})
	if err != nil {
		return core.Failure(err)
	}

	return core.ExportResult{
		Success:     true,
		Filename:    filename(title, opts.CustomFilename, core.FormatPDF),
		Artifact:    out.PDF,
		ContentType: "application/pdf",
		Metadata:    buildMetadata(core.FormatPDF, title, content.ID, out.Text, now),
	}
}
