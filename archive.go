package nbdc

import (
	"encoding/gob"
	"fmt"
	"log"
	"os"
)

// archiveRootKey is the fixed top-level key under which the
// study/release/dictionary structure is serialized.
const archiveRootKey = "lst_dds"

// dictionaryKeys are the well-known wrapper keys under which a
// release entry may hold its data dictionary, in priority order.
var dictionaryKeys = []string{"dd", "data_dict", "dictionary"}

// An Archive is the root of the study/release/dictionary structure:
// a mapping from study identifier to StudyTable.  Key insertion order
// is preserved, since the source format's named lists are ordered.
type Archive struct {
	keys    []string
	studies map[string]*StudyTable
}

// NewArchive returns an empty Archive.
func NewArchive() *Archive {
	return &Archive{studies: make(map[string]*StudyTable)}
}

// Set adds or replaces the StudyTable for a study identifier.
func (a *Archive) Set(study string, st *StudyTable) {
	if _, ok := a.studies[study]; !ok {
		a.keys = append(a.keys, study)
	}
	st.study = study
	a.studies[study] = st
}

// Studies returns the study identifiers in insertion order.
func (a *Archive) Studies() []string {
	return a.keys
}

// Study returns the StudyTable for the given identifier, or a
// StudyNotFoundError if the archive has no such study.
func (a *Archive) Study(study string) (*StudyTable, error) {

	st, ok := a.studies[study]
	if !ok {
		return nil, &StudyNotFoundError{Study: study, Available: a.keys}
	}
	return st, nil
}

// A StudyTable maps release-version keys to release entries for one
// study.  Key insertion order is preserved.
type StudyTable struct {
	study   string
	keys    []string
	entries map[string]*ReleaseEntry
}

// NewStudyTable returns an empty StudyTable.
func NewStudyTable() *StudyTable {
	return &StudyTable{entries: make(map[string]*ReleaseEntry)}
}

// Set adds or replaces the entry under a release key.
func (st *StudyTable) Set(key string, e *ReleaseEntry) {
	if _, ok := st.entries[key]; !ok {
		st.keys = append(st.keys, key)
	}
	st.entries[key] = e
}

// Keys returns the release keys in insertion order.
func (st *StudyTable) Keys() []string {
	return st.keys
}

// Release locates the entry for a requested version string.  Release
// keys follow several naming conventions, so the version is tried
// verbatim, then prefixed with the study identifier and an
// underscore, then prefixed with "v".  The first key present wins.
func (st *StudyTable) Release(version string) (*ReleaseEntry, error) {

	tried := []string{
		version,
		st.study + "_" + version,
		"v" + version,
	}

	for _, key := range tried {
		if e, ok := st.entries[key]; ok {
			return e, nil
		}
	}

	return nil, &ReleaseNotFoundError{Version: version, Tried: tried, Available: st.keys}
}

// A ReleaseEntry is either a data dictionary table directly, or a
// wrapper mapping holding the table under one of several well-known
// keys.  The variant is fixed when the entry is built or decoded;
// downstream code never re-inspects the shape.
type ReleaseEntry struct {
	table   *DataTable
	keys    []string
	wrapped map[string]interface{}
}

// NewTableEntry returns an entry holding the table directly.
func NewTableEntry(t *DataTable) *ReleaseEntry {
	return &ReleaseEntry{table: t}
}

// NewWrapperEntry returns an empty wrapper entry.
func NewWrapperEntry() *ReleaseEntry {
	return &ReleaseEntry{wrapped: make(map[string]interface{})}
}

// Put stores a value under a wrapper key.  The value must be a
// *DataTable or a string; archives carry occasional textual metadata
// alongside the dictionary.
func (e *ReleaseEntry) Put(key string, v interface{}) error {

	if e.wrapped == nil {
		return fmt.Errorf("entry holds a table directly, not a wrapper")
	}
	switch v.(type) {
	case *DataTable, string:
	default:
		return fmt.Errorf("unsupported wrapper value type %T", v)
	}
	if _, ok := e.wrapped[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.wrapped[key] = v

	return nil
}

// Dictionary returns the data dictionary table held by the entry.  An
// entry that is already a table is returned unchanged.  Otherwise the
// wrapper is searched for the keys "dd", "data_dict" and "dictionary"
// in that order, falling back to the first key in insertion order.
func (e *ReleaseEntry) Dictionary() (*DataTable, error) {

	if e.table != nil {
		return e.table, nil
	}

	for _, key := range dictionaryKeys {
		if v, ok := e.wrapped[key]; ok {
			return entryTable(key, v)
		}
	}

	if len(e.keys) == 0 {
		return nil, &UnexpectedStructureError{Observed: "empty wrapper"}
	}
	key := e.keys[0]
	return entryTable(key, e.wrapped[key])
}

func entryTable(key string, v interface{}) (*DataTable, error) {

	t, ok := v.(*DataTable)
	if !ok {
		return nil, &UnexpectedStructureError{Key: key, Observed: fmt.Sprintf("%T", v)}
	}
	return t, nil
}

// Wire format.  Named lists become parallel key/value slices so that
// insertion order survives the round trip; gob maps would not
// preserve it.

const (
	colString = iota
	colFloat
	colBool
	colList
)

type colWire struct {
	Kind    int
	Strings []string
	Floats  []float64
	Bools   []bool
	Lists   [][]string
	Missing []bool
}

type poolChunkWire struct {
	First, Last int
	Cols        []colWire
}

type tableWire struct {
	Names []string
	NRows int
	Cols  []colWire
	Pool  []poolChunkWire
}

type wrapWire struct {
	IsText bool
	Text   string
	Table  *tableWire
}

type entryWire struct {
	Table  *tableWire
	Keys   []string
	Values []wrapWire
}

type studyWire struct {
	Keys    []string
	Entries []entryWire
}

type archiveWire struct {
	RootKey string
	Keys    []string
	Studies []studyWire
}

func seriesToWire(ser *Series) colWire {

	w := colWire{Missing: ser.missing}
	switch y := ser.data.(type) {
	case nil:
		w.Kind = colString
		w.Strings = []string{}
	case []string:
		w.Kind = colString
		w.Strings = y
	case []float64:
		w.Kind = colFloat
		w.Floats = y
	case []bool:
		w.Kind = colBool
		w.Bools = y
	case [][]string:
		w.Kind = colList
		w.Lists = y
	default:
		panic(fmt.Sprintf("unknown data type %T in seriesToWire", ser.data))
	}

	return w
}

func seriesFromWire(name string, length int, w colWire) *Series {

	var data interface{}
	switch w.Kind {
	case colString:
		data = w.Strings
	case colFloat:
		data = w.Floats
	case colBool:
		data = w.Bools
	case colList:
		data = w.Lists
	}

	ser, err := NewSeries(name, data, w.Missing)
	if err != nil {
		panic(err)
	}
	ser.length = length

	return ser
}

// tableToWire converts a table for serialization.  Round-tripping
// through the concrete wire format forces per-column builders; a
// deferred table backed by a source has its values pulled into an
// out-of-line chunked pool.  If the pull fails, the table is written
// with whatever the columns hold, which for a fully deferred table is
// nothing; decoding such a table reproduces the zero-length-column
// defect.
func tableToWire(t *DataTable) *tableWire {

	w := &tableWire{Names: t.names, NRows: t.nrows}

	concrete := true
	for _, c := range t.cols {
		if c.DataLength() < t.nrows && c.build != nil {
			if err := c.Force(); err != nil {
				log.Printf("archive: column %s: %v", c.Name, err)
			}
		}
		if c.DataLength() != t.nrows {
			concrete = false
		}
	}

	if !concrete && t.src != nil {
		pool, err := poolFromSource(t.src, len(t.cols), t.nrows)
		if err != nil {
			log.Printf("archive: deferred table not serializable: %v", err)
		} else {
			w.Pool = pool
			return w
		}
	}

	for _, c := range t.cols {
		w.Cols = append(w.Cols, seriesToWire(c))
	}

	return w
}

// poolFromSource extracts chunked column values from a row source.
func poolFromSource(src RowSource, ncols, nrows int) ([]poolChunkWire, error) {

	var pool []poolChunkWire
	for first := 0; first < nrows; first += chunkRows {
		last := first + chunkRows
		if last > nrows {
			last = nrows
		}
		sl, err := src.ReadRange(first, last)
		if err != nil {
			return nil, err
		}
		if len(sl) != ncols {
			return nil, fmt.Errorf("source produced %d columns, want %d", len(sl), ncols)
		}
		cw := poolChunkWire{First: first, Last: last}
		for _, c := range sl {
			cw.Cols = append(cw.Cols, seriesToWire(c))
		}
		pool = append(pool, cw)
	}

	return pool, nil
}

func tableFromWire(w *tableWire) *DataTable {

	if len(w.Pool) > 0 {
		ps := &poolSource{ncols: len(w.Names), nrows: w.NRows}
		for _, cw := range w.Pool {
			ch := poolChunk{first: cw.First, last: cw.Last}
			for j, c := range cw.Cols {
				name := ""
				if j < len(w.Names) {
					name = w.Names[j]
				}
				ch.cols = append(ch.cols, seriesFromWire(name, cw.Last-cw.First, c))
			}
			ps.chunks = append(ps.chunks, ch)
		}
		return NewDeferredTable(w.Names, w.NRows, ps)
	}

	cols := make([]*Series, len(w.Cols))
	for j, c := range w.Cols {
		cols[j] = seriesFromWire(w.Names[j], w.NRows, c)
	}

	return &DataTable{names: append([]string(nil), w.Names...), cols: cols, nrows: w.NRows}
}

func entryToWire(e *ReleaseEntry) entryWire {

	if e.table != nil {
		return entryWire{Table: tableToWire(e.table)}
	}

	w := entryWire{Keys: e.keys}
	for _, key := range e.keys {
		switch v := e.wrapped[key].(type) {
		case string:
			w.Values = append(w.Values, wrapWire{IsText: true, Text: v})
		case *DataTable:
			w.Values = append(w.Values, wrapWire{Table: tableToWire(v)})
		}
	}

	return w
}

func entryFromWire(w entryWire) *ReleaseEntry {

	if w.Table != nil {
		return NewTableEntry(tableFromWire(w.Table))
	}

	e := NewWrapperEntry()
	for i, key := range w.Keys {
		v := w.Values[i]
		if v.IsText {
			_ = e.Put(key, v.Text)
		} else {
			_ = e.Put(key, tableFromWire(v.Table))
		}
	}

	return e
}

// LoadArchive decodes the archive at the given path and returns the
// root mapping directly.
func LoadArchive(path string) (*Archive, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var w archiveWire
	if err := gob.NewDecoder(f).Decode(&w); err != nil {
		return nil, fmt.Errorf("reading archive %s: %v", path, err)
	}
	if w.RootKey != archiveRootKey {
		return nil, fmt.Errorf("archive %s has top-level key %q, want %q", path, w.RootKey, archiveRootKey)
	}

	a := NewArchive()
	for i, study := range w.Keys {
		sw := w.Studies[i]
		st := NewStudyTable()
		for k, key := range sw.Keys {
			st.Set(key, entryFromWire(sw.Entries[k]))
		}
		a.Set(study, st)
	}

	return a, nil
}

// SaveArchive encodes the archive to the given path, overwriting any
// existing file.
func SaveArchive(a *Archive, path string) error {

	w := archiveWire{RootKey: archiveRootKey}
	for _, study := range a.keys {
		st := a.studies[study]
		sw := studyWire{Keys: st.keys}
		for _, key := range st.keys {
			sw.Entries = append(sw.Entries, entryToWire(st.entries[key]))
		}
		w.Keys = append(w.Keys, study)
		w.Studies = append(w.Studies, sw)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&w); err != nil {
		f.Close()
		return fmt.Errorf("writing archive %s: %v", path, err)
	}

	return f.Close()
}
