package paginate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/draftly/exportkit/core"
	"github.com/draftly/exportkit/core/markdown"
)

// blockKind classifies one laid-out content block.
type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockCode
	blockListItem
	blockQuote
	blockTable
	blockImage
	blockRule
)

// block is one measured element of the raster: its wrapped lines (or rows,
// or image), the font it was measured with, and its absolute position in
// raster units.
type block struct {
	kind  blockKind
	level int

	lines []string
	rows  [][]string
	rowH  []float64
	img   *asset

	family string
	style  string
	fontPt float64 // oversampled points
	indent float64 // raster units
	fill   bool

	imgW float64
	imgH float64

	y float64
	h float64
}

// raster is the flattened measurement of the whole staged surface: total
// dimensions in raster units (oversampled points) plus every positioned
// block. Slicing walks this top to bottom.
type raster struct {
	width  float64
	height float64
	blocks []*block
	text   string
}

const (
	codeSizeFactor = 0.85
	codePad        = 6.0 * oversample
	cellPad        = 4.0 * oversample
	quoteIndent    = 14.0 * oversample
	pxToPt         = 0.75 // CSS pixel at 96 dpi to point
)

// rasterize converts the sanitized hypertext into Markdown, walks it block
// by block, and measures every block on the staging surface at 2x
// oversampling. The result carries absolute Y offsets, ready for slicing.
func (p *Pipeline) rasterize(st *staging, sanitized string, assets map[string]*asset, opts core.ExportOptions) (*raster, error) {
	md := p.conv.HTMLToMarkdown(sanitized)
	style := defaultStyleSheet()

	blocks, err := p.parseBlocks(st, md, style, assets)
	if err != nil {
		return nil, err
	}

	base := st.fontSize * oversample
	gap := base * 0.6
	cursor := stagePadding * oversample

	var text strings.Builder
	for _, b := range blocks {
		b.y = cursor
		cursor += b.h + gap
		appendBlockText(&text, b)
	}

	return &raster{
		width:  virtualWidth * oversample,
		height: cursor + stagePadding*oversample,
		blocks: blocks,
		text:   strings.TrimSpace(text.String()),
	}, nil
}

var (
	reOrderedItem = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	reTaskItem    = regexp.MustCompile(`^- \[([ xX])\]\s+(.*)$`)
	reImageLine   = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)$`)
	reTableRule   = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)
)

// parseBlocks walks the Markdown line by line, grouping lines into blocks
// and measuring each one as it closes.
func (p *Pipeline) parseBlocks(st *staging, md string, style styleSheet, assets map[string]*asset) ([]*block, error) {
	var (
		blocks []*block
		para   []string
		code   []string
		quote  []string
		table  [][]string
		inCode bool
	)

	base := st.fontSize * oversample
	width := st.contentWidth()

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		text := cleanInline(strings.Join(para, " "))
		para = nil
		if text == "" {
			return
		}
		b := &block{kind: blockParagraph, family: st.fontFamily, fontPt: base}
		b.lines = st.wrap(text, b.family, "", b.fontPt, width)
		b.h = float64(len(b.lines)) * b.fontPt * lineSpacing
		blocks = append(blocks, b)
	}
	flushQuote := func() {
		if len(quote) == 0 {
			return
		}
		text := cleanInline(strings.Join(quote, " "))
		quote = nil
		if text == "" {
			return
		}
		b := &block{kind: blockQuote, family: st.fontFamily, style: "I", fontPt: base, indent: quoteIndent}
		b.lines = st.wrap(text, b.family, b.style, b.fontPt, width-quoteIndent)
		b.h = float64(len(b.lines)) * b.fontPt * lineSpacing
		blocks = append(blocks, b)
	}
	flushTable := func() {
		if len(table) == 0 {
			return
		}
		rows := table
		table = nil
		b := measureTable(st, rows, base, width)
		if b != nil {
			blocks = append(blocks, b)
		}
	}
	flushAll := func() {
		flushPara()
		flushQuote()
		flushTable()
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		// Fenced code: accumulate raw lines until the closing fence.
		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				blocks = append(blocks, measureCode(st, code, base, width))
				code = nil
				inCode = false
			} else {
				flushAll()
				inCode = true
			}
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}

		if trimmed == "" {
			flushAll()
			continue
		}

		// Tables: consecutive pipe rows, separator rows dropped.
		if strings.HasPrefix(trimmed, "|") {
			flushPara()
			flushQuote()
			if !reTableRule.MatchString(trimmed) {
				table = append(table, splitTableRow(trimmed))
			}
			continue
		}
		flushTable()

		if strings.HasPrefix(trimmed, ">") {
			flushPara()
			quote = append(quote, strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
			continue
		}
		flushQuote()

		switch {
		case trimmed == "---":
			flushAll()
			blocks = append(blocks, &block{kind: blockRule, h: 2 * oversample})

		case strings.HasPrefix(trimmed, "#"):
			flushAll()
			if b := measureHeading(st, trimmed, style, base, width); b != nil {
				blocks = append(blocks, b)
			}

		case reImageLine.MatchString(trimmed):
			flushAll()
			if b := measureImage(trimmed, assets, width); b != nil {
				blocks = append(blocks, b)
			}

		case reTaskItem.MatchString(trimmed):
			flushAll()
			m := reTaskItem.FindStringSubmatch(trimmed)
			marker := "[ ] "
			if m[1] != " " {
				marker = "[x] "
			}
			blocks = append(blocks, measureListItem(st, marker+cleanInline(m[2]), base, width))

		case strings.HasPrefix(trimmed, "- "):
			flushAll()
			blocks = append(blocks, measureListItem(st, "• "+cleanInline(trimmed[2:]), base, width))

		case reOrderedItem.MatchString(trimmed):
			flushAll()
			m := reOrderedItem.FindStringSubmatch(trimmed)
			blocks = append(blocks, measureListItem(st, m[1]+". "+cleanInline(m[2]), base, width))

		default:
			para = append(para, trimmed)
		}
	}

	if inCode {
		// Unterminated fence: treat what accumulated as a code block.
		blocks = append(blocks, measureCode(st, code, base, width))
	}
	flushAll()

	if len(blocks) == 0 {
		return nil, fmt.Errorf("staged document produced no content blocks")
	}
	return blocks, nil
}

func measureHeading(st *staging, line string, style styleSheet, base, width float64) *block {
	level := 0
	for _, ch := range line {
		if ch != '#' {
			break
		}
		level++
	}
	if level > 6 {
		level = 6
	}
	text := cleanInline(strings.TrimSpace(strings.TrimLeft(line, "# ")))
	if text == "" {
		return nil
	}
	b := &block{kind: blockHeading, level: level, family: st.fontFamily, style: "B"}
	b.fontPt = base * style.headingScale[level]
	b.lines = st.wrap(text, b.family, b.style, b.fontPt, width)
	b.h = float64(len(b.lines)) * b.fontPt * lineSpacing
	return b
}

func measureCode(st *staging, raw []string, base, width float64) *block {
	b := &block{kind: blockCode, family: "Courier", fontPt: base * codeSizeFactor, fill: true}
	inner := width - 2*codePad
	for _, line := range raw {
		if line == "" {
			b.lines = append(b.lines, "")
			continue
		}
		b.lines = append(b.lines, st.wrap(line, b.family, "", b.fontPt, inner)...)
	}
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	b.h = float64(len(b.lines))*b.fontPt*lineSpacing + 2*codePad
	return b
}

func measureListItem(st *staging, text string, base, width float64) *block {
	b := &block{kind: blockListItem, family: st.fontFamily, fontPt: base}
	b.lines = st.wrap(text, b.family, "", b.fontPt, width)
	b.h = float64(len(b.lines)) * b.fontPt * lineSpacing
	return b
}

func measureTable(st *staging, rows [][]string, base, width float64) *block {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}

	b := &block{kind: blockTable, family: st.fontFamily, fontPt: base * 0.9, rows: rows}
	colW := width/float64(cols) - 2*cellPad
	for _, row := range rows {
		maxLines := 1
		for _, cell := range row {
			if n := len(st.wrap(cell, b.family, "", b.fontPt, colW)); n > maxLines {
				maxLines = n
			}
		}
		rh := float64(maxLines)*b.fontPt*lineSpacing + 2*cellPad
		b.rowH = append(b.rowH, rh)
		b.h += rh
	}
	return b
}

func measureImage(line string, assets map[string]*asset, width float64) *block {
	m := reImageLine.FindStringSubmatch(line)
	a, ok := assets[m[2]]
	if !ok || a == nil || a.broken {
		return nil
	}

	w := float64(a.pxW) * pxToPt * oversample
	h := float64(a.pxH) * pxToPt * oversample
	if w > width {
		h = h * width / w
		w = width
	}
	return &block{kind: blockImage, img: a, imgW: w, imgH: h, h: h}
}

// splitTableRow splits a pipe-delimited row into trimmed, inline-cleaned cells.
func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, cleanInline(strings.TrimSpace(p)))
	}
	return cells
}

// cleanInline strips inline Markdown formatting, keeping the readable text.
func cleanInline(text string) string {
	return markdown.StripInline(text)
}

// appendBlockText accumulates the plain text composed into the document,
// used for the artifact's word and character counts.
func appendBlockText(sb *strings.Builder, b *block) {
	switch b.kind {
	case blockTable:
		for _, row := range b.rows {
			sb.WriteString(strings.Join(row, " "))
			sb.WriteString("\n")
		}
	case blockImage, blockRule:
		// no text
	default:
		for _, line := range b.lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
}
