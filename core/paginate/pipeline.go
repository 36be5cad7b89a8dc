// Package paginate implements the page-description pipeline: it stages the
// document on an off-screen measuring surface, sanitizes it, loads embedded
// assets, measures the content into a raster, cuts the raster into
// page-sized slices, and composes the slices into a PDF.
//
// The pipeline is a linear state machine:
//
//	STAGE → SANITIZE → AWAIT_ASSETS → RASTERIZE → PAGINATE → COMPOSE → CLEANUP
//
// Any state may fail; cleanup runs unconditionally and a failed run never
// returns a partial artifact.
package paginate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/markdown"
)

// state is one stage of the pipeline.
type state int

const (
	stateStage state = iota
	stateSanitize
	stateAwaitAssets
	stateRasterize
	statePaginate
	stateCompose
	stateCleanup
	stateSuccess
	stateFailure
)

var stateNames = map[state]string{
	stateStage:       "STAGE",
	stateSanitize:    "SANITIZE",
	stateAwaitAssets: "AWAIT_ASSETS",
	stateRasterize:   "RASTERIZE",
	statePaginate:    "PAGINATE",
	stateCompose:     "COMPOSE",
	stateCleanup:     "CLEANUP",
	stateSuccess:     "SUCCESS",
	stateFailure:     "FAILURE",
}

func (s state) String() string {
	return stateNames[s]
}

// Per-run timing defaults. Both are fields on the pipeline so tests can run
// without wall-clock waits.
const (
	DefaultImageTimeout = 3000 * time.Millisecond
	DefaultSettleDelay  = 500 * time.Millisecond
)

// Pipeline converts staged hypertext into a paginated PDF.
type Pipeline struct {
	// ImageTimeout bounds each individual image load.
	ImageTimeout time.Duration
	// SettleDelay is the fixed wait between asset loading and measurement.
	SettleDelay time.Duration

	log    zerolog.Logger
	conv   *markdown.Converter
	loader *assetLoader
}

// New creates a Pipeline with default timing.
func New(log zerolog.Logger) *Pipeline {
	return &Pipeline{
		ImageTimeout: DefaultImageTimeout,
		SettleDelay:  DefaultSettleDelay,
		log:          log.With().Str("component", "paginate").Logger(),
		conv:         markdown.New(),
		loader:       newAssetLoader(),
	}
}

// Input is one pagination request: the resolved hypertext body plus the
// header/footer ingredients and the effective options.
type Input struct {
	Title       string
	HTML        string
	GeneratedAt time.Time
	Options     core.ExportOptions
}

// Output is a successful pagination: the PDF bytes, the plain text that was
// composed into it (for metadata counts), and the page count.
type Output struct {
	PDF   []byte
	Text  string
	Pages int
}

// Run executes the pipeline. The staging surface is released on every exit
// path; a failure at any stage yields an error and no artifact.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Output, error) {
	cur := stateStage
	p.transition(cur)

	st := newStaging(in)
	defer func() {
		p.transition(stateCleanup)
		st.cleanup()
	}()

	cur = p.transition(stateSanitize)
	sanitized, err := sanitize(st.html)
	if err != nil {
		return nil, p.fail(cur, err)
	}

	cur = p.transition(stateAwaitAssets)
	assets := p.awaitAssets(ctx, sanitized, in.Options.Images())
	if err := p.settle(ctx, assets); err != nil {
		return nil, p.fail(cur, err)
	}

	cur = p.transition(stateRasterize)
	r, err := p.rasterize(st, sanitized, assets, in.Options)
	if err != nil {
		return nil, p.fail(cur, err)
	}

	cur = p.transition(statePaginate)
	geom, err := GeometryFor(in.Options.PageSize, in.Options.EffectiveMargins())
	if err != nil {
		return nil, p.fail(cur, err)
	}
	scale, slices := computeSlices(r, geom)

	cur = p.transition(stateCompose)
	pdf, err := compose(r, geom, slices, scale, st, assets)
	if err != nil {
		return nil, p.fail(cur, err)
	}

	p.transition(stateSuccess)
	return &Output{PDF: pdf, Text: r.text, Pages: len(slices)}, nil
}

// transition logs entry into a state and returns it.
func (p *Pipeline) transition(s state) state {
	p.log.Debug().Stringer("state", s).Msg("pipeline transition")
	return s
}

// fail records the failing state and wraps the error into the rendering
// taxonomy. The deferred cleanup still runs after this.
func (p *Pipeline) fail(s state, err error) error {
	p.transition(stateFailure)
	p.log.Warn().Stringer("state", s).Err(err).Msg("pipeline failed")
	return fmt.Errorf("%w: %s: %v", core.ErrRendering, s, err)
}

// settle waits the fixed post-load delay before measurement. Documents
// without assets skip the delay; there is nothing to settle.
func (p *Pipeline) settle(ctx context.Context, assets map[string]*asset) error {
	if len(assets) == 0 || p.SettleDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(p.SettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
