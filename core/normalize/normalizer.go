// Package normalize resolves a content envelope into canonical hypertext.
// Every strategy operates on the normalizer's output, so the rest of the
// engine never cares which of the three sources the caller supplied.
package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/draftly/exportkit/core"
)

// Normalizer resolves an ExportableContent envelope into one HTML string.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Resolve returns the canonical hypertext for the envelope. Resolution order
// is LiveDocument, then raw HTML, then the structured tree; a source that
// yields empty text falls through to the next one. If nothing resolves to
// non-empty text the export fails with ErrContentResolution.
func (n *Normalizer) Resolve(content core.ExportableContent) (string, error) {
	if content.LiveDocument != nil {
		h, err := content.LiveDocument.HTML()
		if err != nil {
			return "", fmt.Errorf("%w: reading live document: %v", core.ErrContentResolution, err)
		}
		if strings.TrimSpace(h) != "" {
			return h, nil
		}
	}

	if strings.TrimSpace(content.HTML) != "" {
		return content.HTML, nil
	}

	if content.StructuredTree != nil {
		h, err := renderTree(content.StructuredTree)
		if err != nil {
			return "", fmt.Errorf("%w: rendering structured tree: %v", core.ErrContentResolution, err)
		}
		if strings.TrimSpace(h) != "" {
			return h, nil
		}
	}

	return "", core.ErrContentResolution
}

// renderTree instantiates a throwaway node rendering of the serialized tree
// and serializes it back to hypertext. The rendering is non-interactive and
// discarded as soon as the string is extracted.
func renderTree(root *core.Node) (string, error) {
	node, err := buildNode(root)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", fmt.Errorf("serializing tree: %w", err)
	}
	return buf.String(), nil
}

// buildNode converts one serialized node (and its children) into an
// x/net/html node.
func buildNode(n *core.Node) (*html.Node, error) {
	switch n.Type {
	case "text":
		return &html.Node{Type: html.TextNode, Data: n.Text}, nil

	case "element":
		if n.Tag == "" {
			return nil, fmt.Errorf("element node without a tag")
		}
		el := &html.Node{Type: html.ElementNode, Data: strings.ToLower(n.Tag)}
		for k, v := range n.Attrs {
			el.Attr = append(el.Attr, html.Attribute{Key: k, Val: v})
		}
		for _, child := range n.Children {
			cn, err := buildNode(child)
			if err != nil {
				return nil, err
			}
			el.AppendChild(cn)
		}
		return el, nil

	default:
		return nil, fmt.Errorf("unknown node type %q", n.Type)
	}
}
