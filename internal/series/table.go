package series

import (
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/perfscope/internal/core"
)

// Standard price fields.
const (
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldClose  = "Close"
	FieldVolume = "Volume"
)

// Layout identifies how a table arranges its columns.
type Layout int

const (
	// LayoutFlat has one column per field for a single instrument.
	LayoutFlat Layout = iota + 1
	// LayoutHierarchical keys every column by (field, instrument).
	LayoutHierarchical
)

func (l Layout) String() string {
	switch l {
	case LayoutFlat:
		return "flat"
	case LayoutHierarchical:
		return "hierarchical"
	default:
		return "unknown"
	}
}

// Column addresses one column of a table. Instrument is empty in a flat table.
type Column struct {
	Field      string
	Instrument string
}

func (c Column) String() string {
	if c.Instrument == "" {
		return c.Field
	}
	return fmt.Sprintf("(%s, %s)", c.Field, c.Instrument)
}

// Table is a time-indexed price table. Cells are nil where the source had no
// observation.
type Table struct {
	index []time.Time
	cols  []Column
	data  map[Column][]*float64
}

// NewTable creates an empty table over the given index.
func NewTable(index []time.Time) *Table {
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return &Table{
		index: idx,
		data:  make(map[Column][]*float64),
	}
}

// AddColumn appends a column. The values must line up with the index.
func (t *Table) AddColumn(col Column, values []*float64) error {
	if col.Field == "" {
		return core.WrapError(core.ErrDataShape, fmt.Errorf("column has no field name"))
	}
	if len(values) != len(t.index) {
		return core.WrapError(core.ErrDataShape,
			fmt.Errorf("column %s has %d values, index has %d", col, len(values), len(t.index)))
	}
	if _, exists := t.data[col]; exists {
		return core.WrapError(core.ErrDataShape, fmt.Errorf("duplicate column %s", col))
	}
	t.cols = append(t.cols, col)
	t.data[col] = values
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Index returns the table's timestamps.
func (t *Table) Index() []time.Time { return t.index }

// Columns returns the columns in insertion order.
func (t *Table) Columns() []Column { return t.cols }

// Column returns the cells of one column.
func (t *Table) Column(col Column) ([]*float64, bool) {
	v, ok := t.data[col]
	return v, ok
}

// Layout inspects the column keys and reports which of the two recognised
// layouts the table uses. Empty tables and tables mixing both are rejected.
func (t *Table) Layout() (Layout, error) {
	if len(t.cols) == 0 {
		return 0, core.WrapError(core.ErrDataShape, fmt.Errorf("table has no columns"))
	}

	var flat, nested int
	for _, c := range t.cols {
		if c.Instrument == "" {
			flat++
		} else {
			nested++
		}
	}

	switch {
	case nested == 0:
		return LayoutFlat, nil
	case flat == 0:
		return LayoutHierarchical, nil
	default:
		return 0, core.WrapError(core.ErrDataShape,
			fmt.Errorf("table mixes %d flat and %d instrument columns", flat, nested))
	}
}

// Instruments lists the distinct instruments of a hierarchical table, sorted.
func (t *Table) Instruments() []string {
	seen := make(map[string]struct{})
	for _, c := range t.cols {
		if c.Instrument != "" {
			seen[c.Instrument] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
