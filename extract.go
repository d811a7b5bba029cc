package nbdc

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// nameColumn is the identifier field expected in every NBDC data
// dictionary; it is used for the post-write sanity check.
const nameColumn = "name"

// WriteCSV writes the flattened output columns as comma-separated
// text: a header row of column names, then one line per record, with
// missing values rendered as empty fields and no row-index column.
// The destination directory is created if needed, and any existing
// file at the path is overwritten.
func WriteCSV(cols SeriesArray, path string) error {

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	names := make([]string, len(cols))
	for j, c := range cols {
		names[j] = c.Name
	}
	if err := w.Write(names); err != nil {
		return err
	}

	nrow := 0
	if len(cols) > 0 {
		nrow = cols[0].DataLength()
	}

	row := make([]string, len(cols))
	for i := 0; i < nrow; i++ {
		for j, c := range cols {
			v, miss := c.StringAt(i)
			if miss {
				row[j] = ""
			} else {
				row[j] = v
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// checkNameColumn re-reads the written file and reports how many
// non-empty values the name column holds, with a short sample.  This
// is an operator-facing diagnostic only; an all-empty column is
// logged but does not fail the run.
func checkNameColumn(path string) {

	f, err := os.Open(path)
	if err != nil {
		log.Printf("check: cannot re-read %s: %v", path, err)
		return
	}
	defer f.Close()

	rdr := NewCSVReader(f)
	rdr.TypeHints = map[string]string{nameColumn: "string"}
	data, err := rdr.Read(-1)
	if err != nil {
		log.Printf("check: cannot parse %s: %v", path, err)
		return
	}

	var col *Series
	for _, c := range data {
		if c.Name == nameColumn {
			col = c
			break
		}
	}
	if col == nil {
		log.Printf("check: %s has no %q column", path, nameColumn)
		return
	}

	x, miss, err := col.AsStringSlice()
	if err != nil {
		log.Printf("check: %v", err)
		return
	}

	var sample []string
	nonEmpty := 0
	for i, v := range x {
		if (miss != nil && miss[i]) || v == "" {
			continue
		}
		nonEmpty++
		if len(sample) < 5 {
			sample = append(sample, v)
		}
	}

	if nonEmpty == 0 {
		log.Printf("check: warning: %q column of %s is entirely empty", nameColumn, path)
		return
	}
	log.Printf("check: %d non-empty %q values, e.g. %s", nonEmpty, nameColumn, strings.Join(sample, ", "))
}

// ExtractRelease runs the whole extraction pipeline: load the archive
// at archivePath, locate the study and release, unwrap the data
// dictionary, materialize it if deferred, flatten it to text, and
// write it to outPath as CSV.  Diagnostics are logged progressively
// as each stage completes.
func ExtractRelease(archivePath, study, version, outPath string) error {

	a, err := LoadArchive(archivePath)
	if err != nil {
		return err
	}
	log.Printf("loaded archive %s: studies %s", archivePath, strings.Join(a.Studies(), ", "))

	st, err := a.Study(study)
	if err != nil {
		return err
	}

	entry, err := st.Release(version)
	if err != nil {
		return err
	}
	log.Printf("resolved release %s for study %s", version, study)

	t, err := entry.Dictionary()
	if err != nil {
		return err
	}
	log.Printf("dictionary has %d columns, %d declared rows", len(t.ColumnNames()), t.NumRows())

	if err := t.Materialize(); err != nil {
		return err
	}

	cols, flattened, padded := Flatten(t)
	if len(flattened) > 0 {
		log.Printf("flattened list columns: %s", strings.Join(flattened, ", "))
	}
	if len(padded) > 0 {
		log.Printf("warning: padded %d short columns with missing values: %s",
			len(padded), strings.Join(padded, ", "))
	}

	if err := WriteCSV(cols, outPath); err != nil {
		return err
	}
	log.Printf("wrote %d rows x %d columns to %s", t.NumRows(), len(cols), outPath)

	checkNameColumn(outPath)

	return nil
}
