// Package table draws bordered tables with proportional columns, wrapped cells
// and an optional totals row onto a layout.Surface.
package table

import (
	"fmt"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/script"
)

// Column binds a column spec to the function extracting a cell's text from a row value.
// A nil Text, or one returning "", yields a blank cell.
type Column[T any] struct {
	layout.ColumnSpec
	Text func(T) string
}

// Style holds the drawing parameters shared by all rows of a table.
type Style struct {
	FontSize     float64 // mm
	HeaderFont   string
	Fonts        script.Selector
	Rows         layout.RowMetrics
	HeaderFill   layout.Color
	TextColor    layout.Color
	BorderWeight float64 // mm
}

// DefaultStyle uses the "Latin", "LatinBold" and "CJK" font resources.
func DefaultStyle() Style {
	return Style{
		FontSize:     9 * layout.PtToMm,
		HeaderFont:   "LatinBold",
		Fonts:        script.Selector{Latin: "Latin", CJK: "CJK"},
		Rows:         layout.DefaultRowMetrics,
		HeaderFill:   layout.Color{R: 235, G: 235, B: 235},
		TextColor:    layout.TextColor,
		BorderWeight: 0.2,
	}
}

// Table is one table kind, e.g. the course table or the participant table of an invoice.
type Table[T any] struct {
	Name    string
	Columns []Column[T]
	Style   Style
}

// Specs returns the column specs in order.
func (t *Table[T]) Specs() []layout.ColumnSpec {
	specs := make([]layout.ColumnSpec, len(t.Columns))
	for i, c := range t.Columns {
		specs[i] = c.ColumnSpec
	}
	return specs
}

// Validate fails fast on broken column weights or row metrics.
func (t *Table[T]) Validate() error {
	if err := layout.ValidateColumns(t.Specs()); err != nil {
		return &layout.ConfigError{Table: t.Name, Err: err}
	}
	if err := t.Style.Rows.Validate(); err != nil {
		return &layout.ConfigError{Table: t.Name, Err: err}
	}
	if t.Style.FontSize <= 0 {
		return &layout.ConfigError{Table: t.Name, Err: fmt.Errorf("font size must be positive, got %g", t.Style.FontSize)}
	}
	return nil
}

// Totals describes the final row. It spans only the columns listed in Values
// (typically the price columns); Label is drawn right-aligned in the column
// immediately to the left of that span.
type Totals struct {
	Label  string
	Values map[int]string
}

// Render draws the whole table starting at y and returns the y it finished at.
// left and width describe the usable horizontal band of the table.
func (t *Table[T]) Render(surf layout.Surface, left, width, y float64, rows []T, totals *Totals) (float64, error) {
	r, err := t.Begin(surf, left, width, y)
	if err != nil {
		return y, err
	}
	for i, row := range rows {
		if err := r.Row(row); err != nil {
			return r.Y(), fmt.Errorf("table %s row %d: %w", t.Name, i+1, err)
		}
	}
	if totals != nil {
		if err := r.Totals(*totals); err != nil {
			return r.Y(), fmt.Errorf("table %s totals: %w", t.Name, err)
		}
	}
	return r.Close()
}
