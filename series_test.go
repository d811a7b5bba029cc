package nbdc

import (
	"testing"
)

func TestFlattenLists(t *testing.T) {

	ser, err := NewSeries("choices", [][]string{{"a", "b", "c"}, {}, {"x"}, nil}, nil)
	if err != nil {
		t.Fatal(err)
	}

	flat, changed := ser.FlattenLists()
	if !changed {
		t.Fatal("list column not reported as flattened")
	}

	expected, _ := NewSeries("choices", []string{"a; b; c", "", "x", ""}, []bool{false, true, false, true})
	if f, j := flat.AllEqual(expected); !f {
		t.Errorf("flattened series differs at %d", j)
	}
}

func TestFlattenScalarUnchanged(t *testing.T) {

	ser, _ := NewSeries("name", []string{"q1", "q2"}, nil)
	flat, changed := ser.FlattenLists()
	if changed {
		t.Error("scalar column reported as flattened")
	}
	if flat != ser {
		t.Error("scalar column was copied")
	}
}

func TestPadTo(t *testing.T) {

	ser, _ := NewSeries("v", []string{"a", "b", "c"}, nil)
	padded, added := ser.PadTo(5)
	if added != 2 {
		t.Errorf("added %d values, want 2", added)
	}

	expected, _ := NewSeries("v", []string{"a", "b", "c", "", ""}, []bool{false, false, false, true, true})
	if f, j := padded.AllEqual(expected); !f {
		t.Errorf("padded series differs at %d", j)
	}

	same, added := padded.PadTo(5)
	if added != 0 || same != padded {
		t.Error("full-length series was padded")
	}
}

func TestToString(t *testing.T) {

	fs, _ := NewSeries("x", []float64{1, 3.5, 0}, []bool{false, false, true})
	expected, _ := NewSeries("x", []string{"1", "3.5", ""}, []bool{false, false, true})
	if f, j := fs.ToString().AllEqual(expected); !f {
		t.Errorf("float conversion differs at %d", j)
	}

	bs, _ := NewSeries("y", []bool{true, false}, nil)
	expectedB, _ := NewSeries("y", []string{"true", "false"}, []bool{false, false})
	if f, j := bs.ToString().AllEqual(expectedB); !f {
		t.Errorf("bool conversion differs at %d", j)
	}
}

func TestDeferredForce(t *testing.T) {

	ser := NewDeferredSeries("x", 4, func(first, last int) (interface{}, []bool, error) {
		x := make([]float64, last-first)
		for i := range x {
			x[i] = float64(first + i)
		}
		return x, nil, nil
	})

	if ser.DataLength() != 0 {
		t.Fatalf("deferred series holds %d values before Force", ser.DataLength())
	}
	if ser.Length() != 4 {
		t.Fatalf("declared length %d, want 4", ser.Length())
	}

	if err := ser.Force(); err != nil {
		t.Fatal(err)
	}
	if ser.Deferred() {
		t.Error("series still deferred after Force")
	}

	expected, _ := NewSeries("x", []float64{0, 1, 2, 3}, nil)
	if f, j := ser.AllEqual(expected); !f {
		t.Errorf("forced series differs at %d", j)
	}
}

func TestStringAt(t *testing.T) {

	ser, _ := NewSeries("v", [][]string{{"1", "2"}, {"3"}, {}}, nil)

	v, miss := ser.StringAt(0)
	if miss || v != "1; 2" {
		t.Errorf("StringAt(0) = %q, %v", v, miss)
	}
	v, miss = ser.StringAt(1)
	if miss || v != "3" {
		t.Errorf("StringAt(1) = %q, %v", v, miss)
	}
	if _, miss = ser.StringAt(2); !miss {
		t.Error("empty list not reported missing")
	}
}
