package layout

import "unicode/utf8"

// PageConfig is the page geometry. Lengths are in millimetres, font sizes in points.
type PageConfig struct {
	Width        float64 `json:"width" yaml:"width"`
	Height       float64 `json:"height" yaml:"height"`
	TopMargin    float64 `json:"topMargin" yaml:"top_margin"`
	BottomMargin float64 `json:"bottomMargin" yaml:"bottom_margin"`
	LeftMargin   float64 `json:"leftMargin" yaml:"left_margin"`
	RightMargin  float64 `json:"rightMargin" yaml:"right_margin"`

	LineHeight   float64 `json:"lineHeight" yaml:"line_height"`
	RowHeight    float64 `json:"rowHeight" yaml:"row_height"`
	HeaderHeight float64 `json:"headerHeight" yaml:"header_height"`
	RuleGap      float64 `json:"ruleGap" yaml:"rule_gap"`
	BlockGap     float64 `json:"blockGap" yaml:"block_gap"`
	BulletIndent float64 `json:"bulletIndent" yaml:"bullet_indent"`

	FontSize        float64 `json:"fontSize" yaml:"font_size"`
	HeadingFontSize float64 `json:"headingFontSize" yaml:"heading_font_size"`
	FooterFontSize  float64 `json:"footerFontSize" yaml:"footer_font_size"`
}

// DefaultPageConfig is A4 portrait.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Width:           210,
		Height:          297,
		TopMargin:       20,
		BottomMargin:    20,
		LeftMargin:      20,
		RightMargin:     20,
		LineHeight:      6,
		RowHeight:       7,
		HeaderHeight:    8,
		RuleGap:         3,
		BlockGap:        3,
		BulletIndent:    5,
		FontSize:        11,
		HeadingFontSize: 13,
		FooterFontSize:  9,
	}
}

// ContentWidth is the usable width between the side margins.
func (c PageConfig) ContentWidth() float64 {
	return c.Width - c.LeftMargin - c.RightMargin
}

// Bottom is the lowest y a fragment may reach.
func (c PageConfig) Bottom() float64 {
	return c.Height - c.BottomMargin
}

// Measurer reports the rendered width of a string in millimetres.
type Measurer interface {
	TextWidth(text string, fontSize float64, bold bool) float64
}

const pointToMM = 25.4 / 72

// FixedPitch approximates every glyph as half an em wide.
type FixedPitch struct{}

func (FixedPitch) TextWidth(text string, fontSize float64, bold bool) float64 {
	w := float64(utf8.RuneCountInString(text)) * fontSize * pointToMM * 0.5
	if bold {
		w *= 1.1
	}
	return w
}

// Fragment is a positioned drawing primitive on a page.
type Fragment interface {
	isFragment()
}

// TextRun is one line of text; Y is the top of the line box.
type TextRun struct {
	X, Y     float64
	Height   float64
	Text     string
	FontSize float64
	Bold     bool
}

// Rule is a horizontal line.
type Rule struct {
	X1, X2, Y float64
}

// TableFragment is a whole table with absolute column widths.
type TableFragment struct {
	X, Y         float64
	Header       []string
	Rows         [][]string
	ColumnWidths []float64
	HeaderHeight float64
	RowHeight    float64
	FontSize     float64
}

func (TextRun) isFragment()       {}
func (Rule) isFragment()          {}
func (TableFragment) isFragment() {}

// Height is the vertical space the table occupies.
func (t TableFragment) Height() float64 {
	return t.HeaderHeight + float64(len(t.Rows))*t.RowHeight
}

// Page is one laid out page. Label is empty until the stamping pass.
type Page struct {
	Index     int
	Cursor    float64
	Fragments []Fragment
	Label     string
}

// Document is the finished paginated report.
type Document struct {
	Filename string
	Config   PageConfig
	Pages    []Page
}
