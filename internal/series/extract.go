package series

import (
	"fmt"
	"math"
	"time"

	"github.com/newthinker/perfscope/internal/core"
)

// ExtractClose returns the gap-free closing-price series for instrument.
func ExtractClose(t *Table, instrument string) (Series, error) {
	return Extract(t, FieldClose, instrument)
}

// Extract selects one price field for an instrument and drops missing cells.
//
// A flat table holds a single instrument, so the identifier is not consulted
// there. A hierarchical table must carry (field, instrument); there is no
// fallback to another column.
func Extract(t *Table, field, instrument string) (Series, error) {
	if t == nil {
		return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("nil table"))
	}

	layout, err := t.Layout()
	if err != nil {
		return nil, err
	}

	var col Column
	switch layout {
	case LayoutFlat:
		col = Column{Field: field}
	case LayoutHierarchical:
		col = Column{Field: field, Instrument: instrument}
	}

	cells, ok := t.Column(col)
	if !ok {
		if layout == LayoutHierarchical {
			return nil, core.WrapError(core.ErrDataShape,
				fmt.Errorf("no %s column for instrument %q", field, instrument))
		}
		return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("no %s column", field))
	}

	index := t.Index()
	out := make(Series, 0, len(cells))
	for i, cell := range cells {
		if cell == nil || math.IsNaN(*cell) {
			continue
		}
		v := *cell
		if v <= 0 || math.IsInf(v, 0) {
			return nil, core.WrapError(core.ErrDataShape,
				fmt.Errorf("%s %v at %s is not a positive finite price", col, v, index[i].Format(time.DateOnly)))
		}
		if n := len(out); n > 0 && !index[i].After(out[n-1].Time) {
			return nil, core.WrapError(core.ErrDataShape,
				fmt.Errorf("index not strictly increasing at %s", index[i].Format(time.DateOnly)))
		}
		out = append(out, core.Point{Time: index[i], Value: v})
	}

	return out, nil
}
