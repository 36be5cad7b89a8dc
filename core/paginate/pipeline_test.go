package paginate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftly/exportkit/core"
)

func testInput(html string) Input {
	return Input{
		Title:       "Test Document",
		HTML:        html,
		GeneratedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Options: core.ExportOptions{
			Format:   core.FormatPDF,
			PageSize: core.PageSizeA4,
			FontSize: core.DefaultFontSize,
		},
	}
}

func TestRunProducesPDF(t *testing.T) {
	p := testPipeline()

	out, err := p.Run(context.Background(), testInput("<h1>Hello</h1><p>A short paragraph of body text.</p>"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out.PDF), "%PDF-"), "artifact must be a PDF")
	assert.Equal(t, 1, out.Pages)
	assert.Contains(t, out.Text, "Hello")
	assert.Contains(t, out.Text, "short paragraph")
}

func TestRunPaginatesLongContent(t *testing.T) {
	p := testPipeline()

	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("<p>This paragraph pads the document downward so the content outgrows a single printable page and forces the pipeline to cut additional slices.</p>")
	}

	out, err := p.Run(context.Background(), testInput(b.String()))
	require.NoError(t, err)
	assert.Greater(t, out.Pages, 1, "long content must span multiple pages")
}

func TestRunMixedBlocks(t *testing.T) {
	p := testPipeline()

	html := `<h2>Section</h2>
		<p>Intro text.</p>
		<blockquote>a quoted remark</blockquote>
		<pre><code>x := 1
y := 2</code></pre>
		<ul><li>first</li><li>second</li></ul>
		<table><tr><th>k</th><th>v</th></tr><tr><td>a</td><td>1</td></tr></table>
		<hr>`

	out, err := p.Run(context.Background(), testInput(html))
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Section")
	assert.Contains(t, out.Text, "quoted remark")
	assert.Contains(t, out.Text, "x := 1")
	assert.Contains(t, out.Text, "first")
}

func TestRunToleratesBrokenImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	p := testPipeline()
	p.ImageTimeout = 200 * time.Millisecond

	out, err := p.Run(context.Background(), testInput(
		`<p>before</p><img src="`+srv.URL+`/dead.png" alt="dead"><p>after</p>`))
	require.NoError(t, err, "a broken image must not fail the export")
	assert.Contains(t, out.Text, "before")
	assert.Contains(t, out.Text, "after")
}

func TestRunEmbedsImage(t *testing.T) {
	img := testPNG(t, 40, 30)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	}))
	defer srv.Close()

	p := testPipeline()

	out, err := p.Run(context.Background(), testInput(
		`<p>caption below</p><img src="`+srv.URL+`/pic.png" alt="pic">`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out.PDF), "%PDF-"))
}

func TestRunStripsTransientMarkup(t *testing.T) {
	p := testPipeline()

	html := `<p>kept<span class="selection-marker">cursor</span></p>
		<script>alert("no")</script>
		<p><span class="comment-highlight">annotated</span></p>`

	out, err := p.Run(context.Background(), testInput(html))
	require.NoError(t, err)
	assert.NotContains(t, out.Text, "alert")
	assert.NotContains(t, out.Text, "cursor")
	assert.Contains(t, out.Text, "annotated")
}

func TestRunFailsOnUnknownPageSize(t *testing.T) {
	p := testPipeline()

	in := testInput("<p>body</p>")
	in.Options.PageSize = "Postcard"

	_, err := p.Run(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRendering)
	assert.Contains(t, err.Error(), "PAGINATE")
}

func TestRunSkipsSettleWithoutAssets(t *testing.T) {
	p := testPipeline()
	p.SettleDelay = 2 * time.Second // would dominate the test if not skipped

	start := time.Now()
	_, err := p.Run(context.Background(), testInput("<p>no assets at all</p>"))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "STAGE", stateStage.String())
	assert.Equal(t, "AWAIT_ASSETS", stateAwaitAssets.String())
	assert.Equal(t, "COMPOSE", stateCompose.String())
	assert.Equal(t, "FAILURE", stateFailure.String())
}
