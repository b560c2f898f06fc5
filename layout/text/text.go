// Package text renders laid out reports as plain text for terminals and logs.
package text

import (
	"errors"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"go-patrol/layout"
)

// columnWidth is how many millimetres one character column stands for.
const columnWidth = 2.0

// PageBreak separates pages in the output.
const PageBreak = "\f\n"

var errNoPage = errors.New("no page open")

// Backend implements layout.RenderBackend and layout.RuleDrawer.
type Backend struct {
	cfg   layout.PageConfig
	pages []*strings.Builder
}

func New(cfg layout.PageConfig) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) current() (*strings.Builder, error) {
	if len(b.pages) == 0 {
		return nil, errNoPage
	}
	return b.pages[len(b.pages)-1], nil
}

func (b *Backend) NewPage() error {
	b.pages = append(b.pages, &strings.Builder{})
	return nil
}

func (b *Backend) PlaceText(run layout.TextRun) error {
	page, err := b.current()
	if err != nil {
		return err
	}
	indent := int((run.X - b.cfg.LeftMargin) / columnWidth)
	if indent > 0 {
		page.WriteString(strings.Repeat(" ", indent))
	}
	text := run.Text
	if run.Bold {
		text = strings.ToUpper(text)
	}
	page.WriteString(text)
	page.WriteString("\n")
	return nil
}

func (b *Backend) PlaceRule(r layout.Rule) error {
	page, err := b.current()
	if err != nil {
		return err
	}
	page.WriteString(strings.Repeat("=", max(1, int((r.X2-r.X1)/columnWidth))))
	page.WriteString("\n")
	return nil
}

func (b *Backend) PlaceTable(t layout.TableFragment) error {
	page, err := b.current()
	if err != nil {
		return err
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(row(t.Header))
	for _, r := range t.Rows {
		tw.AppendRow(row(r))
	}
	page.WriteString(tw.Render())
	page.WriteString("\n")
	return nil
}

func (b *Backend) StampPageNumbers(labels []string) error {
	if len(labels) != len(b.pages) {
		return errors.New("page label count does not match page count")
	}
	for i, label := range labels {
		b.pages[i].WriteString("\n")
		b.pages[i].WriteString(label)
		b.pages[i].WriteString("\n")
	}
	return nil
}

// String joins the pages with form feeds.
func (b *Backend) String() string {
	parts := make([]string, len(b.pages))
	for i, p := range b.pages {
		parts[i] = p.String()
	}
	return strings.Join(parts, PageBreak)
}

func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Render is a convenience for layout.Render followed by String.
func Render(doc layout.Document) (string, error) {
	b := New(doc.Config)
	if err := layout.Render(doc, b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func row(cells []string) table.Row {
	r := make(table.Row, len(cells))
	for i, c := range cells {
		r[i] = c
	}
	return r
}
