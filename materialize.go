package nbdc

import (
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
)

// chunkRows is the row-range size used for chunked extraction and for
// writing deferred tables to an archive pool.
const chunkRows = 10000

// rowSeqName is the throwaway column appended during the force-copy
// recovery strategy.
const rowSeqName = "nbdc_row_seq"

// defective reports whether the table exhibits the
// lazy-materialization defect: a positive declared row count with a
// first column that holds a different number of values.
func (t *DataTable) defective() bool {

	if t.nrows <= 0 || len(t.cols) == 0 {
		return false
	}
	return t.cols[0].DataLength() != t.nrows
}

// Materialize repairs a table whose columns report fewer values than
// the declared row count, a defect of archives written from deferred
// table views.  Recovery strategies are tried in order of increasing
// cost until the first column holds the declared number of rows:
// whole-table collection through the backing source, a serialization
// round trip, a forced copy via structural mutation, and finally
// row-chunked extraction.  If every strategy fails, the error is
// fatal; a half-materialized table is never returned.
func (t *DataTable) Materialize() error {

	if !t.defective() {
		return nil
	}

	log.Printf("materialize: table declares %d rows but column %s holds %d values",
		t.nrows, t.cols[0].Name, t.cols[0].DataLength())

	strategies := []struct {
		name string
		run  func() error
	}{
		{"collect", t.tryCollect},
		{"round-trip", t.tryRoundTrip},
		{"force-copy", t.tryForceCopy},
		{"chunked extraction", t.tryChunked},
	}

	for _, s := range strategies {
		if err := s.run(); err != nil {
			log.Printf("materialize: %s: %v", s.name, err)
		}
		if !t.defective() {
			log.Printf("materialize: recovered via %s", s.name)
			return nil
		}
	}

	c := t.cols[0]
	return &MaterializationError{Column: c.Name, Have: c.DataLength(), Want: t.nrows}
}

// install replaces the table's columns with fully materialized ones.
// Every column must hold exactly the declared number of rows.
func (t *DataTable) install(sl []*Series) error {

	if len(sl) != len(t.names) {
		return fmt.Errorf("have %d columns, want %d", len(sl), len(t.names))
	}
	for j, s := range sl {
		if s.DataLength() != t.nrows {
			return fmt.Errorf("column %s holds %d of %d rows", t.names[j], s.DataLength(), t.nrows)
		}
	}
	for j, s := range sl {
		s.Name = t.names[j]
		s.length = t.nrows
	}

	t.cols = sl
	t.src = nil

	return nil
}

// tryCollect forces evaluation of the whole table at once through the
// backing source.
func (t *DataTable) tryCollect() error {

	if t.src == nil {
		return fmt.Errorf("no backing source to collect from")
	}

	sl, err := t.src.Collect()
	if err != nil {
		return err
	}

	return t.install(sl)
}

// tryRoundTrip serializes the table to a transient file and decodes
// it back.  Encoding forces per-column builders, and a source-backed
// table is rewritten as a concrete chunked pool, so the decoded table
// is often collectable even when the original was not.  The transient
// file is removed before returning.
func (t *DataTable) tryRoundTrip() error {

	f, err := os.CreateTemp("", "nbdc-dds-*.gob")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(tableToWire(t)); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var w tableWire
	if err := gob.NewDecoder(f).Decode(&w); err != nil {
		return err
	}

	nt := tableFromWire(&w)
	if nt.src != nil {
		sl, err := nt.src.Collect()
		if err != nil {
			return err
		}
		return t.install(sl)
	}

	return t.install(nt.cols)
}

// tryForceCopy appends a throwaway counting column and removes it
// again.  The structural mutation path copies the table, forcing any
// short columns from their builders or the backing source.
func (t *DataTable) tryForceCopy() error {

	seq := make([]float64, t.nrows)
	for i := range seq {
		seq[i] = float64(i + 1)
	}
	ser, err := NewSeries(rowSeqName, seq, nil)
	if err != nil {
		return err
	}

	if err := t.AddColumn(ser); err != nil {
		return err
	}
	return t.DropColumn(rowSeqName)
}

// tryChunked extracts the table in fixed-size row ranges.  Slicing
// forces per-chunk materialization even when whole-table strategies
// do not.  Each chunk is bulk-converted to text columns, falling back
// to per-cell extraction when the bulk conversion fails, and appended
// into output buffers pre-sized to the declared row count.  A chunk
// that cannot be read at all is filled with missing values, so the
// strategy makes forward progress under partial failures.
func (t *DataTable) tryChunked() error {

	if t.src == nil {
		usable := false
		for _, c := range t.cols {
			if c.build != nil || c.DataLength() > 0 {
				usable = true
				break
			}
		}
		if !usable {
			return fmt.Errorf("no source, builders, or data to extract from")
		}
	}

	ncol := len(t.cols)
	bufs := make([][]string, ncol)
	miss := make([][]bool, ncol)
	for j := range bufs {
		bufs[j] = make([]string, 0, t.nrows)
		miss[j] = make([]bool, 0, t.nrows)
	}

	nchunks, failed := 0, 0
	for first := 0; first < t.nrows; first += chunkRows {
		last := first + chunkRows
		if last > t.nrows {
			last = t.nrows
		}
		m := last - first
		nchunks++

		sl, err := t.Slice(first, last)
		if err != nil {
			failed++
			log.Printf("materialize: rows [%d, %d): %v; filling with missing values", first, last, err)
			for j := range bufs {
				for i := 0; i < m; i++ {
					bufs[j] = append(bufs[j], "")
					miss[j] = append(miss[j], true)
				}
			}
			continue
		}

		for j := 0; j < ncol; j++ {

			ss := sl[j].ToString()
			x, mk, err := ss.AsStringSlice()
			if err == nil && len(x) == m {
				bufs[j] = append(bufs[j], x...)
				if mk == nil {
					mk = make([]bool, m)
				}
				miss[j] = append(miss[j], mk...)
				continue
			}

			for i := 0; i < m; i++ {
				v, mv := sl[j].StringAt(i)
				bufs[j] = append(bufs[j], v)
				miss[j] = append(miss[j], mv)
			}
		}
	}

	if failed == nchunks {
		return fmt.Errorf("all %d row chunks failed to extract", nchunks)
	}

	out := make([]*Series, ncol)
	for j := range out {
		s, err := NewSeries(t.names[j], bufs[j], miss[j])
		if err != nil {
			return err
		}
		out[j] = s
	}

	return t.install(out)
}
