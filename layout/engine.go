package layout

import (
	"fmt"
	"strings"
)

// BulletMarker prefixes the first line of each list item.
const BulletMarker = "•"

// Engine paginates sections. It holds no state between Layout calls.
type Engine struct {
	cfg     PageConfig
	measure Measurer
}

// NewEngine uses FixedPitch when m is nil.
func NewEngine(cfg PageConfig, m Measurer) *Engine {
	if m == nil {
		m = FixedPitch{}
	}
	return &Engine{cfg: cfg, measure: m}
}

// pager is the per-call page state machine.
type pager struct {
	cfg   PageConfig
	pages []Page
}

func (p *pager) current() *Page {
	return &p.pages[len(p.pages)-1]
}

func (p *pager) open() {
	p.pages = append(p.pages, Page{Index: len(p.pages), Cursor: p.cfg.TopMargin})
}

// reserve moves to a fresh page when need does not fit below the cursor.
func (p *pager) reserve(need float64) {
	if p.current().Cursor+need > p.cfg.Bottom() {
		p.open()
	}
}

func (p *pager) place(f Fragment, advance float64) {
	pg := p.current()
	pg.Fragments = append(pg.Fragments, f)
	pg.Cursor += advance
}

// gap adds trailing space, capped at the bottom edge.
func (p *pager) gap(h float64) {
	pg := p.current()
	pg.Cursor = min(pg.Cursor+h, p.cfg.Bottom())
}

// Layout places included sections in order and then stamps "Page i of N"
// on every page. It always returns at least one page on success.
func (e *Engine) Layout(sections []Section) ([]Page, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	p := &pager{cfg: e.cfg}
	p.open()

	for _, s := range sections {
		if !s.Include {
			continue
		}
		for _, b := range s.Blocks {
			if err := e.placeBlock(p, b); err != nil {
				return nil, err
			}
		}
	}

	Stamp(p.pages)
	return p.pages, nil
}

// Stamp writes the page labels. It runs after pagination so N is final.
func Stamp(pages []Page) {
	for i := range pages {
		pages[i].Label = fmt.Sprintf("Page %d of %d", i+1, len(pages))
	}
}

func (e *Engine) validate() error {
	c := e.cfg
	usable := c.Bottom() - c.TopMargin
	switch {
	case c.ContentWidth() <= 0:
		return failf("page width %.1f leaves no room between margins", c.Width)
	case usable <= 0:
		return failf("page height %.1f leaves no room between margins", c.Height)
	case c.LineHeight <= 0 || c.RowHeight <= 0 || c.HeaderHeight < 0:
		return failf("line, row and header heights must be positive")
	case c.LineHeight+c.RuleGap > usable:
		return failf("a heading does not fit on an empty page")
	}
	return nil
}

func (e *Engine) placeBlock(p *pager, b Block) error {
	c := e.cfg
	switch b := b.(type) {
	case Heading:
		lines := e.wrap(b.Text, c.ContentWidth(), c.HeadingFontSize, true)
		need := float64(len(lines))*c.LineHeight + c.RuleGap
		if need > c.Bottom()-c.TopMargin {
			return failf("heading %q is taller than a page", b.Text)
		}
		p.reserve(need)
		for _, line := range lines {
			p.place(TextRun{X: c.LeftMargin, Y: p.current().Cursor, Height: c.LineHeight,
				Text: line, FontSize: c.HeadingFontSize, Bold: true}, c.LineHeight)
		}
		p.place(Rule{X1: c.LeftMargin, X2: c.Width - c.RightMargin, Y: p.current().Cursor}, c.RuleGap)

	case Paragraph:
		for _, line := range e.wrap(b.Text, c.ContentWidth(), c.FontSize, b.Bold) {
			e.placeLine(p, c.LeftMargin, line, b.Bold)
		}
		p.gap(c.BlockGap)

	case BulletList:
		indent := c.LeftMargin + c.BulletIndent
		for _, item := range b.Items {
			lines := e.wrap(item, c.ContentWidth()-c.BulletIndent, c.FontSize, false)
			for i, line := range lines {
				if i == 0 {
					e.placeLine(p, c.LeftMargin, BulletMarker+" "+line, false)
					continue
				}
				e.placeLine(p, indent, line, false)
			}
		}
		p.gap(c.BlockGap)

	case Table:
		t, err := e.table(b)
		if err != nil {
			return err
		}
		if t.Height() > c.Bottom()-c.TopMargin {
			return failf("table with %d rows is taller than an empty page", len(b.Rows))
		}
		p.reserve(t.Height())
		t.Y = p.current().Cursor
		p.place(t, t.Height())
		p.gap(c.BlockGap)

	default:
		return failf("unsupported block %T", b)
	}
	return nil
}

func (e *Engine) placeLine(p *pager, x float64, text string, bold bool) {
	c := e.cfg
	p.reserve(c.LineHeight)
	p.place(TextRun{X: x, Y: p.current().Cursor, Height: c.LineHeight,
		Text: text, FontSize: c.FontSize, Bold: bold}, c.LineHeight)
}

func (e *Engine) table(b Table) (TableFragment, error) {
	c := e.cfg
	cols := len(b.Header)
	if cols == 0 {
		return TableFragment{}, failf("table has no header")
	}
	for i, row := range b.Rows {
		if len(row) != cols {
			return TableFragment{}, failf("table row %d has %d cells, header has %d", i, len(row), cols)
		}
	}

	weights := b.ColumnWidths
	if len(weights) == 0 {
		weights = make([]float64, cols)
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != cols {
		return TableFragment{}, failf("table has %d column widths for %d columns", len(weights), cols)
	}
	var sum float64
	for _, w := range weights {
		if w <= 0 {
			return TableFragment{}, failf("table column widths must be positive")
		}
		sum += w
	}
	widths := make([]float64, cols)
	for i, w := range weights {
		widths[i] = w / sum * c.ContentWidth()
	}

	rows := make([][]string, len(b.Rows))
	for i, row := range b.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return TableFragment{
		X:            c.LeftMargin,
		Header:       append([]string(nil), b.Header...),
		Rows:         rows,
		ColumnWidths: widths,
		HeaderHeight: c.HeaderHeight,
		RowHeight:    c.RowHeight,
		FontSize:     c.FontSize,
	}, nil
}

// wrap breaks text into lines no wider than width. A word wider than the
// line is split by rune.
func (e *Engine) wrap(text string, width, size float64, bold bool) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if e.measure.TextWidth(candidate, size, bold) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = ""
			for _, piece := range e.split(w, width, size, bold) {
				if line != "" {
					lines = append(lines, line)
				}
				line = piece
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func (e *Engine) split(word string, width, size float64, bold bool) []string {
	var pieces []string
	cur := []rune{}
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && e.measure.TextWidth(string(next), size, bold) > width {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(pieces, string(cur))
}
