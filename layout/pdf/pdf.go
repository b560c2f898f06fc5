// Package pdf renders laid out reports with fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/go-pdf/fpdf"

	"go-patrol/layout"
)

const (
	fontFamily = "Helvetica"
	cellPad    = 2.0
)

// Backend implements layout.RenderBackend, layout.RuleDrawer and layout.Measurer.
// A Backend renders one document and is not safe for concurrent use.
type Backend struct {
	pdf *fpdf.Fpdf
	cfg layout.PageConfig
	tr  func(string) string
}

func New(cfg layout.PageConfig) *Backend {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: cfg.Width, Ht: cfg.Height},
	})
	pdf.SetMargins(cfg.LeftMargin, cfg.TopMargin, cfg.RightMargin)
	pdf.SetAutoPageBreak(false, cfg.BottomMargin)
	pdf.SetFont(fontFamily, "", cfg.FontSize)

	return &Backend{
		pdf: pdf,
		cfg: cfg,
		// cp1252 covers the bullet marker and accented place names.
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (b *Backend) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	b.pdf.SetFont(fontFamily, style, size)
}

// TextWidth measures with the real font metrics.
func (b *Backend) TextWidth(text string, fontSize float64, bold bool) float64 {
	b.setFont(fontSize, bold)
	return b.pdf.GetStringWidth(b.tr(text))
}

// Measurer wraps text with the same font metrics the Backend draws with.
// It is safe for concurrent use, so one can be shared by a report generator.
type Measurer struct {
	mu sync.Mutex
	b  *Backend
}

func NewMeasurer(cfg layout.PageConfig) *Measurer {
	return &Measurer{b: New(cfg)}
}

func (m *Measurer) TextWidth(text string, fontSize float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.b.TextWidth(text, fontSize, bold)
}

func (b *Backend) NewPage() error {
	b.pdf.AddPage()
	return b.pdf.Error()
}

func (b *Backend) PlaceText(run layout.TextRun) error {
	b.setFont(run.FontSize, run.Bold)
	// Text takes a baseline; runs carry the top of their line box.
	b.pdf.Text(run.X, run.Y+run.Height*0.7, b.tr(run.Text))
	return b.pdf.Error()
}

func (b *Backend) PlaceRule(r layout.Rule) error {
	b.pdf.SetLineWidth(0.3)
	b.pdf.Line(r.X1, r.Y, r.X2, r.Y)
	return b.pdf.Error()
}

func (b *Backend) PlaceTable(t layout.TableFragment) error {
	b.pdf.SetLineWidth(0.2)
	b.pdf.SetFillColor(220, 220, 220)

	b.setFont(t.FontSize, true)
	x := t.X
	for i, h := range t.Header {
		w := t.ColumnWidths[i]
		b.pdf.SetXY(x, t.Y)
		b.pdf.CellFormat(w, t.HeaderHeight, b.fit(h, w), "1", 0, "C", true, 0, "")
		x += w
	}

	b.setFont(t.FontSize, false)
	y := t.Y + t.HeaderHeight
	for _, row := range t.Rows {
		x = t.X
		for i, cell := range row {
			w := t.ColumnWidths[i]
			b.pdf.SetXY(x, y)
			b.pdf.CellFormat(w, t.RowHeight, b.fit(cell, w), "1", 0, "L", false, 0, "")
			x += w
		}
		y += t.RowHeight
	}
	return b.pdf.Error()
}

// fit truncates a cell so it stays inside its column. The current font is used.
func (b *Backend) fit(text string, width float64) string {
	s := b.tr(text)
	for len(s) > 0 && b.pdf.GetStringWidth(s) > width-cellPad {
		s = s[:len(s)-1]
	}
	return s
}

// StampPageNumbers writes each label in the bottom margin of its page.
func (b *Backend) StampPageNumbers(labels []string) error {
	n := b.pdf.PageCount()
	if len(labels) != n {
		return fmt.Errorf("got %d page labels for %d pages", len(labels), n)
	}
	b.setFont(b.cfg.FooterFontSize, false)
	for i, label := range labels {
		b.pdf.SetPage(i + 1)
		w := b.pdf.GetStringWidth(label)
		b.pdf.Text(b.cfg.Width-b.cfg.RightMargin-w, b.cfg.Height-b.cfg.BottomMargin/2, label)
	}
	if n > 0 {
		b.pdf.SetPage(n)
	}
	return b.pdf.Error()
}

func (b *Backend) PageCount() int {
	return b.pdf.PageCount()
}

// Output closes the document and writes it to w.
func (b *Backend) Output(w io.Writer) error {
	return b.pdf.Output(w)
}

// Write renders doc as a PDF into w.
func Write(doc layout.Document, w io.Writer) error {
	b := New(doc.Config)
	if err := layout.Render(doc, b); err != nil {
		return err
	}
	if err := b.Output(w); err != nil {
		return &layout.LayoutError{Reason: "write pdf", Err: err}
	}
	return nil
}

// Bytes renders doc as a PDF in memory.
func Bytes(doc layout.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
