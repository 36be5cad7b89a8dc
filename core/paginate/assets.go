package paginate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

const (
	assetUserAgent = "exportkit/1.0 (+https://github.com/draftly/exportkit)"
	maxAssetBytes  = 16 << 20
)

// asset is one embedded image: its bytes, decoded dimensions, and the image
// type the composer registers it under. A broken asset is skipped during
// rasterization; it never fails the export.
type asset struct {
	src     string
	data    []byte
	imgType string // "PNG", "JPG", or "GIF"
	pxW     int
	pxH     int
	broken  bool
}

// assetLoader fetches remote images. One shared client; each request gets
// its own deadline.
type assetLoader struct {
	client *http.Client
}

func newAssetLoader() *assetLoader {
	return &assetLoader{client: &http.Client{}}
}

// awaitAssets collects every embedded image source from the sanitized
// document and loads them concurrently. Each load is bounded by its own
// timeout so one broken image cannot stall the export; loads that fail or
// time out are marked broken. Returns nil when images are excluded.
func (p *Pipeline) awaitAssets(ctx context.Context, sanitized string, includeImages bool) map[string]*asset {
	if !includeImages {
		return nil
	}

	srcs := collectImageSources(sanitized)
	if len(srcs) == 0 {
		return nil
	}

	assets := make(map[string]*asset, len(srcs))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, src := range srcs {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			a := p.loadAsset(ctx, src)
			mu.Lock()
			assets[src] = a
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	for src, a := range assets {
		if a.broken {
			p.log.Warn().Str("src", truncateSrc(src)).Msg("image unavailable, skipping")
		}
	}
	return assets
}

// loadAsset resolves one image source: data URIs are decoded inline, http(s)
// sources are fetched under the per-image timeout, anything else is broken.
func (p *Pipeline) loadAsset(ctx context.Context, src string) *asset {
	a := &asset{src: src}

	var data []byte
	switch {
	case strings.HasPrefix(src, "data:"):
		d, err := decodeDataURI(src)
		if err != nil {
			a.broken = true
			return a
		}
		data = d

	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		d, err := p.fetchImage(ctx, src)
		if err != nil {
			a.broken = true
			return a
		}
		data = d

	default:
		a.broken = true
		return a
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		a.broken = true
		return a
	}
	switch format {
	case "png":
		a.imgType = "PNG"
	case "jpeg":
		a.imgType = "JPG"
	case "gif":
		a.imgType = "GIF"
	default:
		a.broken = true
		return a
	}

	a.data = data
	a.pxW = cfg.Width
	a.pxH = cfg.Height
	return a
}

// fetchImage downloads one image with its own deadline.
func (p *Pipeline) fetchImage(ctx context.Context, src string) ([]byte, error) {
	timeout := p.ImageTimeout
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", assetUserAgent)
	req.Header.Set("Accept", "image/png,image/jpeg,image/gif")

	resp, err := p.loader.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, src)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	return data, nil
}

// collectImageSources returns the src of every img element, in document
// order, deduplicated.
func collectImageSources(sanitized string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var srcs []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		srcs = append(srcs, src)
	})
	return srcs
}

// decodeDataURI extracts the payload of a base64 data URI.
func decodeDataURI(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma == -1 {
		return nil, fmt.Errorf("malformed data URI")
	}
	header, payload := src[:comma], src[comma+1:]
	if !strings.Contains(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding")
	}
	return base64.StdEncoding.DecodeString(payload)
}

func truncateSrc(src string) string {
	if len(src) > 80 {
		return src[:80] + "…"
	}
	return src
}
