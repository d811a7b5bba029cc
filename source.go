package nbdc

import (
	"fmt"
)

// A RowSource supplies column values for a deferred table.  Both
// methods return one Series per column, in table column order.
//
// Collect returns all rows at once; ReadRange returns the rows in
// [first, last).  A source may be able to serve ranges it cannot
// serve in full, and vice versa; the materialization strategies in
// DataTable.Materialize try both.
type RowSource interface {
	Collect() ([]*Series, error)
	ReadRange(first, last int) ([]*Series, error)
}

// A poolChunk holds concrete columns for a contiguous row range of a
// deferred table, as stored out-of-line in an archive.
type poolChunk struct {
	first, last int
	cols        []*Series
}

// A poolSource serves a deferred table from the chunked column pool
// its archive entry was stored with.  Ranges are only served from
// within a single chunk; assembling rows across chunk boundaries is
// left to the chunked extraction in Materialize.
type poolSource struct {
	ncols  int
	nrows  int
	chunks []poolChunk
}

// Collect concatenates all pool chunks into full-length columns.  It
// fails if the chunks do not tile the declared row range exactly or
// if any chunk is damaged.
func (ps *poolSource) Collect() ([]*Series, error) {

	bufs := make([][]string, ps.ncols)
	miss := make([][]bool, ps.ncols)
	for j := range bufs {
		bufs[j] = make([]string, 0, ps.nrows)
		miss[j] = make([]bool, 0, ps.nrows)
	}

	pos := 0
	for _, ch := range ps.chunks {
		if ch.first != pos {
			return nil, fmt.Errorf("pool chunk starts at row %d, want %d", ch.first, pos)
		}
		if len(ch.cols) != ps.ncols {
			return nil, fmt.Errorf("pool chunk at row %d has %d columns, want %d", ch.first, len(ch.cols), ps.ncols)
		}
		m := ch.last - ch.first
		for j, c := range ch.cols {
			if c.DataLength() != m {
				return nil, fmt.Errorf("pool chunk at row %d: column %s holds %d of %d rows", ch.first, c.Name, c.DataLength(), m)
			}
			s := c.ToString()
			x, mk, err := s.AsStringSlice()
			if err != nil {
				return nil, err
			}
			bufs[j] = append(bufs[j], x...)
			if mk == nil {
				mk = make([]bool, m)
			}
			miss[j] = append(miss[j], mk...)
		}
		pos = ch.last
	}
	if pos != ps.nrows {
		return nil, fmt.Errorf("pool covers %d of %d rows", pos, ps.nrows)
	}

	out := make([]*Series, ps.ncols)
	for j := range bufs {
		s, err := NewSeries("", bufs[j], miss[j])
		if err != nil {
			return nil, err
		}
		out[j] = s
	}

	return out, nil
}

// ReadRange serves [first, last) if the range lies within a single
// stored chunk.
func (ps *poolSource) ReadRange(first, last int) ([]*Series, error) {

	for _, ch := range ps.chunks {
		if ch.first > first || last > ch.last {
			continue
		}
		if len(ch.cols) != ps.ncols {
			return nil, fmt.Errorf("pool chunk at row %d has %d columns, want %d", ch.first, len(ch.cols), ps.ncols)
		}
		out := make([]*Series, ps.ncols)
		for j, c := range ch.cols {
			if c.DataLength() != ch.last-ch.first {
				return nil, fmt.Errorf("pool chunk at row %d: column %s is damaged", ch.first, c.Name)
			}
			s, err := sliceSeries(c, first-ch.first, last-ch.first)
			if err != nil {
				return nil, err
			}
			out[j] = s
		}
		return out, nil
	}

	return nil, fmt.Errorf("row range [%d, %d) spans pool chunks", first, last)
}
