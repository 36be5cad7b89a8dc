package paginate

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// transientSelectors mark elements that exist only for the interactive
// editing session. They are removed outright and never reach the raster.
var transientSelectors = []string{
	".selection-marker",
	".collab-cursor",
	"[data-selection]",
	"script",
	"style",
	"noscript",
}

// unwrapSelectors mark collaboration highlights whose text content is real
// document content: the wrapper goes, the children stay.
var unwrapSelectors = []string{
	"span.comment-highlight",
	"mark.comment-highlight",
	"[data-comment-id]",
}

// rgb is a fixed color in the composition stylesheet.
type rgb struct{ r, g, b int }

// styleSheet is the fixed, print-legible styling every staged element is
// forced into: opaque dark text, no underlines outside strikethrough,
// bordered shaded tables, monospace wrapped code, left-accent blockquotes,
// and a strict heading size ladder.
type styleSheet struct {
	text         rgb
	muted        rgb
	codeFill     rgb
	codeText     rgb
	quoteAccent  rgb
	tableBorder  rgb
	tableHead    rgb
	rule         rgb
	background   rgb
	headingScale map[int]float64
}

func defaultStyleSheet() styleSheet {
	return styleSheet{
		text:        rgb{26, 26, 26},
		muted:       rgb{100, 100, 100},
		codeFill:    rgb{245, 245, 245},
		codeText:    rgb{40, 40, 40},
		quoteAccent: rgb{180, 180, 180},
		tableBorder: rgb{160, 160, 160},
		tableHead:   rgb{235, 235, 235},
		rule:        rgb{200, 200, 200},
		background:  rgb{255, 255, 255},
		// H1 > H2 > … > H6, strictly decreasing multiples of the base size.
		headingScale: map[int]float64{1: 2.0, 2: 1.6, 3: 1.35, 4: 1.2, 5: 1.1, 6: 1.0},
	}
}

// sanitize strips collaboration artifacts from the staged hypertext and
// drops source styling so the fixed stylesheet is the only styling left.
func sanitize(staged string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(staged))
	if err != nil {
		return "", fmt.Errorf("parsing staged document: %w", err)
	}

	for _, sel := range transientSelectors {
		doc.Find(sel).Remove()
	}
	for _, sel := range unwrapSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			s.ReplaceWithSelection(s.Contents())
		})
	}

	// Source styling must not leak into the output: every element renders
	// with the pipeline's own stylesheet.
	doc.Find("[style]").RemoveAttr("style")
	doc.Find("font").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})
	doc.Find("u").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return staged, nil
	}
	inner, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("serializing sanitized document: %w", err)
	}
	return inner, nil
}
