// Package exporter holds the export coordinator: an immutable registry of
// format strategies and the sole entry point external callers use. The
// coordinator validates and defaults options, dispatches to the matching
// strategy, and never lets an error or panic escape to the caller.
package exporter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/markdown"
	"github.com/draftly/exportkit/core/strategy"
)

// Coordinator dispatches export calls to format strategies. It holds no
// per-call state; the registry is populated once and never mutated, so one
// coordinator safely serves any number of sequential or concurrent exports.
type Coordinator struct {
	log        zerolog.Logger
	strategies map[core.Format]core.Exporter
	formats    []core.Format
	conv       *markdown.Converter
}

// New creates a Coordinator with every built-in strategy registered.
func New(log zerolog.Logger) *Coordinator {
	c := &Coordinator{
		log:        log.With().Str("component", "exporter").Logger(),
		strategies: make(map[core.Format]core.Exporter),
		conv:       markdown.New(),
	}

	for _, e := range []core.Exporter{
		strategy.NewTextExporter(),
		strategy.NewMarkdownExporter(),
		strategy.NewHTMLExporter(),
		strategy.NewWordExporter(),
		strategy.NewPDFExporter(log),
	} {
		c.register(e)
	}

	sort.Slice(c.formats, func(i, j int) bool { return c.formats[i] < c.formats[j] })
	return c
}

// register maps every format key a strategy declares to that strategy.
// Only called during construction; the registry is immutable afterwards.
func (c *Coordinator) register(e core.Exporter) {
	for _, f := range e.SupportedFormats() {
		c.strategies[f] = e
		c.formats = append(c.formats, f)
	}
}

var (
	defaultOnce        sync.Once
	defaultCoordinator *Coordinator
)

// Default returns the lazily initialized process-wide coordinator. Safe as
// shared state: it is stateless across calls, holding only the registry.
func Default() *Coordinator {
	defaultOnce.Do(func() {
		defaultCoordinator = New(zerolog.Nop())
	})
	return defaultCoordinator
}

// SupportedFormats returns the registered format keys, sorted.
func (c *Coordinator) SupportedFormats() []core.Format {
	out := make([]core.Format, len(c.formats))
	copy(out, c.formats)
	return out
}

// Export runs one export call. Every failure, including a strategy panic,
// comes back as a failure result; Export never raises to the caller.
func (c *Coordinator) Export(ctx context.Context, content core.ExportableContent, opts core.ExportOptions) (res core.ExportResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("strategy panicked")
			res = core.Failure(fmt.Errorf("%w: internal error: %v", core.ErrRendering, r))
		}
	}()

	if !content.HasSource() {
		return core.Failure(core.ErrInvalidContent)
	}

	prepared, errs := prepareOptions(opts, c.strategies)
	if len(errs) > 0 {
		return core.Failure(fmt.Errorf("%w: %s", core.ErrValidation, joinErrors(errs)))
	}

	strat, ok := c.strategies[prepared.Format]
	if !ok {
		return core.Failure(fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, prepared.Format))
	}

	if content.ID == "" {
		content.ID = uuid.NewString()
	}

	start := time.Now()
	res = strat.Export(ctx, content, prepared)

	level := zerolog.InfoLevel
	if !res.Success {
		level = zerolog.WarnLevel
	}
	c.log.WithLevel(level).
		Str("format", string(prepared.Format)).
		Str("id", content.ID).
		Bool("success", res.Success).
		Dur("took", time.Since(start)).
		Msg("export finished")
	return res
}

// ExportDocument exports directly from a live editing-surface handle.
func (c *Coordinator) ExportDocument(ctx context.Context, doc core.LiveDocument, title string, opts core.ExportOptions) core.ExportResult {
	return c.Export(ctx, core.ExportableContent{LiveDocument: doc, Title: title}, opts)
}

// ExportMarkdown exports from raw lightweight markup. A front-matter title
// fills in a missing envelope title; the body is rendered to hypertext
// before dispatch.
func (c *Coordinator) ExportMarkdown(ctx context.Context, markup, title string, opts core.ExportOptions) core.ExportResult {
	fields, body := markdown.ExtractFrontMatter(markup)
	if title == "" {
		title = fields["title"]
	}
	return c.Export(ctx, core.ExportableContent{
		HTML:  c.conv.MarkdownToHTML(body),
		Title: title,
	}, opts)
}

// ValidateOptions checks a partial options object without exporting.
func (c *Coordinator) ValidateOptions(opts core.ExportOptions) core.ValidationResult {
	errs := validateOptions(opts, c.strategies)
	return core.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func joinErrors(errs []string) string {
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}
