package table

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/script"
)

// ErrState is returned when a table operation is called out of order.
var ErrState = errors.New("table: invalid state transition")

type state int

const (
	stateReady state = iota
	stateHeaderDrawn
	stateRowsDrawn
	stateTotalsDrawn
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateHeaderDrawn:
		return "header-drawn"
	case stateRowsDrawn:
		return "rows-drawn"
	case stateTotalsDrawn:
		return "totals-drawn"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Renderer draws one table instance. Transitions only move forward:
// header → rows → totals → closed. The header band is drawn exactly once,
// by Begin; rows continuing on a new page get a top border but no header.
type Renderer[T any] struct {
	t     *Table[T]
	surf  layout.Surface
	cols  []layout.ComputedColumn
	left  float64
	right float64
	state state
	y     float64
	rows  int
}

// Begin plans the columns over width and draws the header band at y.
func (t *Table[T]) Begin(surf layout.Surface, left, width, y float64) (*Renderer[T], error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cols, err := layout.PlanColumns(width, left, t.Specs())
	if err != nil {
		return nil, &layout.ConfigError{Table: t.Name, Err: err}
	}
	r := &Renderer[T]{
		t:     t,
		surf:  surf,
		cols:  cols,
		left:  left,
		right: cols[len(cols)-1].Right(),
		y:     y,
	}
	if err := r.header(); err != nil {
		return nil, err
	}
	r.state = stateHeaderDrawn
	return r, nil
}

// Y returns the current bottom of the table.
func (r *Renderer[T]) Y() float64 { return r.y }

// Rows returns the number of data rows drawn so far.
func (r *Renderer[T]) Rows() int { return r.rows }

// Columns returns the computed columns.
func (r *Renderer[T]) Columns() []layout.ComputedColumn { return r.cols }

func (r *Renderer[T]) transition(op string, from ...state) error {
	for _, s := range from {
		if r.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s in state %s", ErrState, op, r.state)
}

func (r *Renderer[T]) header() error {
	st := r.t.Style
	labels := make([]layout.WrappedCell, len(r.cols))
	for i, col := range r.cols {
		font := st.HeaderFont
		if script.ContainsCJK(col.Label) {
			font = st.Fonts.Select(col.Label)
		}
		cell, err := r.wrap(col.Label, font, col)
		if err != nil {
			return err
		}
		labels[i] = cell
	}
	h := st.Rows.Height(labels)
	if err := r.ensureSpace(h, false); err != nil {
		return err
	}
	top := r.y
	if err := r.surf.FillRect(r.left, top, r.right-r.left, h, st.HeaderFill); err != nil {
		return err
	}
	if err := r.surf.DrawLine(r.left, top, r.right, top, st.BorderWeight); err != nil {
		return err
	}
	return r.drawRow(labels, r.cols, top, h)
}

// Row draws one data row.
func (r *Renderer[T]) Row(item T) error {
	if err := r.transition("row", stateHeaderDrawn, stateRowsDrawn); err != nil {
		return err
	}
	cells := make([]layout.WrappedCell, len(r.cols))
	for i, col := range r.cols {
		text := ""
		if fn := r.t.Columns[i].Text; fn != nil {
			text = fn(item)
		}
		font := r.t.Style.Fonts.Latin
		if col.ScriptAware {
			font = r.t.Style.Fonts.Select(text)
		}
		cell, err := r.wrap(text, font, col)
		if err != nil {
			return err
		}
		cells[i] = cell
	}
	h := r.t.Style.Rows.Height(cells)
	if err := r.ensureSpace(h, true); err != nil {
		return err
	}
	if err := r.drawRow(cells, r.cols, r.y, h); err != nil {
		return err
	}
	r.state = stateRowsDrawn
	r.rows++
	return nil
}

// Totals draws the totals row. Its span is bordered on all four sides.
func (r *Renderer[T]) Totals(tot Totals) error {
	if err := r.transition("totals", stateHeaderDrawn, stateRowsDrawn); err != nil {
		return err
	}
	if len(tot.Values) == 0 {
		return fmt.Errorf("table %s: totals row has no columns", r.t.Name)
	}
	idx := make([]int, 0, len(tot.Values))
	for i := range tot.Values {
		if i < 0 || i >= len(r.cols) {
			return fmt.Errorf("table %s: totals column %d out of range", r.t.Name, i)
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	first, last := idx[0], idx[len(idx)-1]
	span := r.cols[first : last+1]

	st := r.t.Style
	cells := make([]layout.WrappedCell, len(span))
	for j, col := range span {
		cell, err := r.wrap(tot.Values[first+j], st.HeaderFont, col)
		if err != nil {
			return err
		}
		cells[j] = cell
	}
	var label layout.WrappedCell
	if first > 0 && tot.Label != "" {
		var err error
		if label, err = r.wrap(tot.Label, st.HeaderFont, r.cols[first-1]); err != nil {
			return err
		}
	}
	h := st.Rows.Height(append([]layout.WrappedCell{label}, cells...))
	if err := r.ensureSpace(h, false); err != nil {
		return err
	}
	top := r.y
	if err := r.surf.DrawLine(span[0].X, top, span[len(span)-1].Right(), top, st.BorderWeight); err != nil {
		return err
	}
	if first > 0 && tot.Label != "" {
		col := r.cols[first-1]
		col.Align = "right"
		if err := r.drawCell(label, col, top); err != nil {
			return err
		}
	}
	if err := r.drawRow(cells, span, top, h); err != nil {
		return err
	}
	r.state = stateTotalsDrawn
	return nil
}

// Close finishes the table and returns the y it ended at.
func (r *Renderer[T]) Close() (float64, error) {
	if err := r.transition("close", stateHeaderDrawn, stateRowsDrawn, stateTotalsDrawn); err != nil {
		return r.y, err
	}
	r.state = stateClosed
	return r.y, nil
}

func (r *Renderer[T]) wrap(text, font string, col layout.ComputedColumn) (layout.WrappedCell, error) {
	st := r.t.Style
	m, err := r.surf.Measurer(font, st.FontSize)
	if err != nil {
		return layout.WrappedCell{}, err
	}
	return layout.WrappedCell{
		Lines: layout.Wrap(text, col.Width-2*st.Rows.Padding, m),
		Font:  font,
	}, nil
}

// ensureSpace starts a new page when a block of height h does not fit below y.
// Continuation pages get their own top border when border is set.
func (r *Renderer[T]) ensureSpace(h float64, border bool) error {
	top, bottom := r.surf.Bounds()
	if r.y+h <= bottom || r.y <= top {
		return nil
	}
	if err := r.surf.NewPage(); err != nil {
		return err
	}
	r.y = top
	if border {
		return r.surf.DrawLine(r.left, top, r.right, top, r.t.Style.BorderWeight)
	}
	return nil
}

// drawRow draws cells into cols at top, then the bottom border and the
// vertical dividers spanning the row, and advances y by h.
func (r *Renderer[T]) drawRow(cells []layout.WrappedCell, cols []layout.ComputedColumn, top, h float64) error {
	st := r.t.Style
	for i, col := range cols {
		if err := r.drawCell(cells[i], col, top); err != nil {
			return err
		}
	}
	left, right := cols[0].X, cols[len(cols)-1].Right()
	if err := r.surf.DrawLine(left, top+h, right, top+h, st.BorderWeight); err != nil {
		return err
	}
	for _, col := range cols {
		if err := r.surf.DrawLine(col.X, top, col.X, top+h, st.BorderWeight); err != nil {
			return err
		}
	}
	if err := r.surf.DrawLine(right, top, right, top+h, st.BorderWeight); err != nil {
		return err
	}
	r.y = top + h
	return nil
}

func (r *Renderer[T]) drawCell(cell layout.WrappedCell, col layout.ComputedColumn, top float64) error {
	st := r.t.Style
	pad := st.Rows.Padding
	style := layout.TextStyle{
		Font:     cell.Font,
		FontSize: st.FontSize,
		Color:    st.TextColor,
		Align:    col.Align,
		Width:    col.Width - 2*pad,
	}
	for i, line := range cell.Lines {
		if line == "" {
			continue
		}
		y := top + pad + float64(i)*st.Rows.LineHeight
		if err := r.surf.DrawText(line, col.X+pad, y, style); err != nil {
			return err
		}
	}
	return nil
}
