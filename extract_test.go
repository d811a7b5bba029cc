package nbdc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestArchive(t *testing.T, dir string) string {

	s1, err := NewSeries("name", []string{"q1", "q2"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := NewSeries("value", [][]string{{"1", "2"}, {"3"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := NewDataTable([]*Series{s1, s2})
	if err != nil {
		t.Fatal(err)
	}

	st := NewStudyTable()
	st.Set("6.0", NewTableEntry(tbl))
	a := NewArchive()
	a.Set("abcd", st)

	path := filepath.Join(dir, "lst_dds.gob")
	if err := SaveArchive(a, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractRelease(t *testing.T) {

	dir := t.TempDir()
	archive := writeTestArchive(t, dir)
	out := filepath.Join(dir, "out", "abcd_6.0.csv")

	if err := ExtractRelease(archive, "abcd", "6.0", out); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want 3", len(lines))
	}
	if lines[0] != "name,value" {
		t.Errorf("header %q, want %q", lines[0], "name,value")
	}
	if lines[1] != "q1,1; 2" {
		t.Errorf("row 1 is %q", lines[1])
	}
	if lines[2] != "q2,3" {
		t.Errorf("row 2 is %q", lines[2])
	}
}

func TestExtractDeferredRelease(t *testing.T) {

	// End to end through a pool-backed deferred table.
	dir := t.TempDir()

	src := &stubSource{cols: stubCols(t, 12)}
	tbl := NewDeferredTable([]string{"name", "value"}, 12, src)

	st := NewStudyTable()
	st.Set("v6.0", NewTableEntry(tbl))
	a := NewArchive()
	a.Set("abcd", st)

	archive := filepath.Join(dir, "lst_dds.gob")
	if err := SaveArchive(a, archive); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "abcd_6.0.csv")
	if err := ExtractRelease(archive, "abcd", "6.0", out); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 13 {
		t.Fatalf("output has %d lines, want 13", len(lines))
	}
	if lines[1] != "q0,v0" {
		t.Errorf("row 1 is %q", lines[1])
	}
}

func TestExtractMissingStudy(t *testing.T) {

	dir := t.TempDir()

	st := NewStudyTable()
	st.Set("6.0", NewTableEntry(makeDictTable(t, []string{"name", "value"})))
	a := NewArchive()
	a.Set("hbcd", st)

	archive := filepath.Join(dir, "lst_dds.gob")
	if err := SaveArchive(a, archive); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "abcd_6.0.csv")
	err := ExtractRelease(archive, "abcd", "6.0", out)

	var snf *StudyNotFoundError
	if !errors.As(err, &snf) {
		t.Fatalf("got %v, want StudyNotFoundError", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file was written despite the failure")
	}
}

func TestWriteCSVQuoting(t *testing.T) {

	s1, _ := NewSeries("name", []string{"a,b", "c"}, nil)
	cols := SeriesArray{s1}

	path := filepath.Join(t.TempDir(), "q.csv")
	if err := WriteCSV(cols, path); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if lines[1] != "\"a,b\"" {
		t.Errorf("field with comma written as %q", lines[1])
	}
}

func TestWriteCSVOverwrites(t *testing.T) {

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("old contents\nmore\nlines\nhere\n"), 0666); err != nil {
		t.Fatal(err)
	}

	s1, _ := NewSeries("name", []string{"x"}, nil)
	if err := WriteCSV(SeriesArray{s1}, path); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "name\nx\n" {
		t.Errorf("file contents %q after overwrite", string(b))
	}
}
