package nbdc

import (
	"testing"
)

func TestFlatten(t *testing.T) {

	s1, _ := NewSeries("name", []string{"q1", "q2"}, nil)
	s2, _ := NewSeries("value", [][]string{{"1", "2"}, {"3"}}, nil)
	s3, _ := NewSeries("score", []float64{1.5, 0}, []bool{false, true})

	tbl, err := NewDataTable([]*Series{s1, s2, s3})
	if err != nil {
		t.Fatal(err)
	}

	cols, flattened, padded := Flatten(tbl)
	if len(flattened) != 1 || flattened[0] != "value" {
		t.Errorf("flattened columns %v, want [value]", flattened)
	}
	if len(padded) != 0 {
		t.Errorf("padded columns %v, want none", padded)
	}

	expected := make(SeriesArray, 3)
	expected[0], _ = NewSeries("name", []string{"q1", "q2"}, []bool{false, false})
	expected[1], _ = NewSeries("value", []string{"1; 2", "3"}, []bool{false, false})
	expected[2], _ = NewSeries("score", []string{"1.5", ""}, []bool{false, true})

	if f, j, i := cols.AllEqual(expected); !f {
		t.Errorf("flattened table differs at column %d row %d", j, i)
	}
}

func TestFlattenPadsShortColumns(t *testing.T) {

	s1, _ := NewSeries("name", []string{"a", "b", "c", "d", "e"}, nil)
	s2, _ := NewSeries("value", []string{"1", "2", "3"}, nil)

	tbl, err := NewDataTable([]*Series{s1, s2})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.NumRows() != 5 {
		t.Fatalf("declared row count %d, want 5", tbl.NumRows())
	}

	cols, _, padded := Flatten(tbl)
	if len(padded) != 1 || padded[0] != "value" {
		t.Fatalf("padded columns %v, want [value]", padded)
	}

	expected, _ := NewSeries("value", []string{"1", "2", "3", "", ""},
		[]bool{false, false, false, true, true})
	if f, j := cols[1].AllEqual(expected); !f {
		t.Errorf("padded column differs at %d", j)
	}
}
