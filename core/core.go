// Package core defines the shared types and contracts of the export engine.
// Strategies, the normalizer, the converter, and the pagination pipeline all
// speak in terms of these types; the coordinator in core/exporter dispatches
// between them.
package core

import (
	"context"
	"strings"
	"time"
)

// Format identifies one registered export format. The string value doubles
// as the artifact's file extension (without the dot).
type Format string

// Registered export formats.
const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatWord     Format = "docx"
)

// Extension returns the filename extension for the format, dot included.
func (f Format) Extension() string {
	return "." + string(f)
}

// LiveDocument is the read-only view of the external editing surface.
// Exports never mutate the surface; they only ask for its current content.
type LiveDocument interface {
	// HTML returns the document's current hypertext serialization.
	HTML() (string, error)
	// PlainText returns the document's plain-text extraction.
	PlainText() (string, error)
}

// Node is one node of a serialized document tree, the third content source
// an envelope may carry. Type is "element" or "text".
type Node struct {
	Type     string            `json:"type"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// ExportableContent is the input envelope for one export call. At most one
// of LiveDocument, HTML, and StructuredTree is authoritative; resolution
// order is LiveDocument, then HTML, then StructuredTree.
type ExportableContent struct {
	LiveDocument   LiveDocument
	HTML           string
	StructuredTree *Node
	Title          string
	ID             string
}

// HasSource reports whether the envelope carries any content source at all.
// An envelope without a source is rejected before any strategy runs.
func (c ExportableContent) HasSource() bool {
	return c.LiveDocument != nil || strings.TrimSpace(c.HTML) != "" || c.StructuredTree != nil
}

// Metadata describes one finished export. Counts are always computed from
// the final emitted payload, never from the pre-cleanup source.
type Metadata struct {
	Format         Format    `json:"format"`
	Title          string    `json:"title"`
	ID             string    `json:"id,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
}

// ExportResult is the outcome of one export call. Artifact and Error are
// mutually exclusive: a failed export never carries a partial payload.
type ExportResult struct {
	Success     bool
	Filename    string
	Artifact    []byte
	ContentType string
	Metadata    *Metadata
	Error       string
}

// Failure builds a failed ExportResult from an error.
func Failure(err error) ExportResult {
	return ExportResult{Error: err.Error()}
}

// Exporter is the shared strategy contract. One implementation exists per
// output format; each catches its own failures and reports them through the
// result rather than panicking.
type Exporter interface {
	// SupportedFormats returns the format keys this strategy registers under.
	SupportedFormats() []Format
	// Export converts the envelope into the strategy's output format.
	Export(ctx context.Context, content ExportableContent, opts ExportOptions) ExportResult
}
