// Package layout paginates report sections into positioned fragments and
// replays them into a rendering backend.
package layout

// Block is one piece of section content. The set of variants is closed:
// Heading, Paragraph, BulletList and Table.
type Block interface {
	isBlock()
}

// Heading is a section title, underlined by a rule.
type Heading struct {
	Text string
}

// Paragraph is wrapped free text. Embedded newlines start new lines.
type Paragraph struct {
	Text string
	Bold bool
}

// BulletList wraps each item under a bullet marker.
type BulletList struct {
	Items []string
}

// Table never splits across pages.
type Table struct {
	Header []string
	Rows   [][]string
	// ColumnWidths are relative weights. Empty means equal columns.
	ColumnWidths []float64
}

func (Heading) isBlock()    {}
func (Paragraph) isBlock()  {}
func (BulletList) isBlock() {}
func (Table) isBlock()      {}

// Section groups blocks that are toggled together.
type Section struct {
	Name    string
	Blocks  []Block
	Include bool
}
