package layout

import "fmt"

// RenderBackend draws a laid out document. Pages arrive in order and every
// page is opened with NewPage before its fragments are placed.
type RenderBackend interface {
	NewPage() error
	PlaceText(run TextRun) error
	PlaceTable(t TableFragment) error
	// StampPageNumbers receives one label per page once every page exists.
	StampPageNumbers(labels []string) error
}

// RuleDrawer is implemented by backends that can draw heading underlines.
// Backends without it skip rules.
type RuleDrawer interface {
	PlaceRule(r Rule) error
}

// Render replays doc into b. Any backend error aborts the render.
func Render(doc Document, b RenderBackend) error {
	rules, _ := b.(RuleDrawer)
	labels := make([]string, 0, len(doc.Pages))

	for _, pg := range doc.Pages {
		if err := b.NewPage(); err != nil {
			return &LayoutError{Reason: fmt.Sprintf("open page %d", pg.Index+1), Err: err}
		}
		for _, f := range pg.Fragments {
			var err error
			switch f := f.(type) {
			case TextRun:
				err = b.PlaceText(f)
			case TableFragment:
				err = b.PlaceTable(f)
			case Rule:
				if rules != nil {
					err = rules.PlaceRule(f)
				}
			default:
				err = fmt.Errorf("unsupported fragment %T", f)
			}
			if err != nil {
				return &LayoutError{Reason: fmt.Sprintf("render page %d", pg.Index+1), Err: err}
			}
		}
		labels = append(labels, pg.Label)
	}

	if err := b.StampPageNumbers(labels); err != nil {
		return &LayoutError{Reason: "stamp page numbers", Err: err}
	}
	return nil
}
