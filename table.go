package nbdc

import (
	"fmt"
)

// A DataTable is a rectangular collection of named columns with a
// declared row count.  Every column of a healthy table holds exactly
// NumRows values; a table decoded from a deferred view may hold
// zero-length columns instead, and must be repaired with Materialize
// before its data is used.
type DataTable struct {
	names []string
	cols  []*Series
	nrows int

	// Backing store for tables decoded from a chunked column
	// pool.  Nil for fully concrete tables.
	src RowSource
}

// NewDataTable returns a DataTable over the given columns.  The
// declared row count is taken from the longest column; the columns
// are not copied.
func NewDataTable(cols []*Series) (*DataTable, error) {

	if len(cols) == 0 {
		return nil, fmt.Errorf("a table requires at least one column")
	}

	nrows := 0
	names := make([]string, len(cols))
	for j, c := range cols {
		names[j] = c.Name
		if c.Length() > nrows {
			nrows = c.Length()
		}
	}

	return &DataTable{names: names, cols: cols, nrows: nrows}, nil
}

// NewDeferredTable returns a DataTable whose columns declare the
// given row count but hold no data.  The optional source provides the
// column values on demand.
func NewDeferredTable(names []string, nrows int, src RowSource) *DataTable {

	cols := make([]*Series, len(names))
	for j, name := range names {
		cols[j] = &Series{Name: name, length: nrows}
	}

	return &DataTable{names: append([]string(nil), names...), cols: cols, nrows: nrows, src: src}
}

// NumRows returns the declared number of rows.
func (t *DataTable) NumRows() int {
	return t.nrows
}

// ColumnNames returns the names of the columns, in order.
func (t *DataTable) ColumnNames() []string {
	return t.names
}

// Columns returns the columns of the table, in order.
func (t *DataTable) Columns() []*Series {
	return t.cols
}

// Column returns the column with the given name, or nil if there is
// no such column.
func (t *DataTable) Column(name string) *Series {

	for j, nm := range t.names {
		if nm == name {
			return t.cols[j]
		}
	}
	return nil
}

// AddColumn appends a column to the table.  Structural mutation
// forces a copy of the existing columns, extending any that are
// short of the declared row count from their builders or from the
// backing source.
func (t *DataTable) AddColumn(ser *Series) error {

	if ser.Length() != t.nrows {
		return fmt.Errorf("column %s has %d rows, table has %d", ser.Name, ser.Length(), t.nrows)
	}

	t.rectify()
	t.names = append(t.names, ser.Name)
	t.cols = append(t.cols, ser)

	return nil
}

// DropColumn removes the named column from the table.
func (t *DataTable) DropColumn(name string) error {

	for j, nm := range t.names {
		if nm == name {
			t.names = append(t.names[:j], t.names[j+1:]...)
			t.cols = append(t.cols[:j], t.cols[j+1:]...)
			return nil
		}
	}

	return fmt.Errorf("no column named %s", name)
}

// rectify copies every column that is short of the declared row
// count, recovering values from the column's builder where one is
// attached, and otherwise from the backing source.
func (t *DataTable) rectify() {

	var pulled []*Series

	for j, c := range t.cols {

		if c.DataLength() == t.nrows {
			continue
		}

		if c.build != nil {
			if err := c.Force(); err == nil {
				continue
			}
		}

		if t.src == nil {
			continue
		}
		if pulled == nil {
			sl, err := t.src.ReadRange(0, t.nrows)
			if err != nil {
				return
			}
			pulled = sl
		}
		if j < len(pulled) && pulled[j].DataLength() == t.nrows {
			s := pulled[j]
			s.Name = c.Name
			s.length = t.nrows
			t.cols[j] = s
		}
	}
}

// Slice returns the columns restricted to the row range [first,
// last).  For deferred tables the range is read through the backing
// source or the per-column builders, which forces materialization of
// just that range.
func (t *DataTable) Slice(first, last int) ([]*Series, error) {

	if first < 0 || last > t.nrows || first > last {
		return nil, fmt.Errorf("row range [%d, %d) out of bounds for %d rows", first, last, t.nrows)
	}

	if t.src != nil {
		sl, err := t.src.ReadRange(first, last)
		if err != nil {
			return nil, err
		}
		if len(sl) != len(t.cols) {
			return nil, fmt.Errorf("source produced %d columns, want %d", len(sl), len(t.cols))
		}
		for j, s := range sl {
			s.Name = t.names[j]
		}
		return sl, nil
	}

	sl := make([]*Series, len(t.cols))
	for j, c := range t.cols {

		if c.DataLength() >= last {
			s, err := sliceSeries(c, first, last)
			if err != nil {
				return nil, err
			}
			sl[j] = s
			continue
		}

		if c.build == nil {
			return nil, fmt.Errorf("column %s holds %d of %d rows and has no builder", c.Name, c.DataLength(), t.nrows)
		}
		data, miss, err := c.forceRange(first, last)
		if err != nil {
			return nil, err
		}
		s, err := NewSeries(c.Name, data, miss)
		if err != nil {
			return nil, err
		}
		sl[j] = s
	}

	return sl, nil
}

// sliceSeries restricts a concrete series to [first, last).
func sliceSeries(ser *Series, first, last int) (*Series, error) {

	var miss []bool
	if ser.missing != nil {
		miss = ser.missing[first:last]
	}

	switch y := ser.data.(type) {
	case []string:
		return NewSeries(ser.Name, y[first:last], miss)
	case []float64:
		return NewSeries(ser.Name, y[first:last], miss)
	case []bool:
		return NewSeries(ser.Name, y[first:last], miss)
	case [][]string:
		return NewSeries(ser.Name, y[first:last], miss)
	default:
		return nil, fmt.Errorf("unknown data type %T in sliceSeries", ser.data)
	}
}
