package nbdc

import (
	"strings"
	"testing"
)

func TestCSVReadInfer(t *testing.T) {

	src := "name,order\nq1,1\nq2,2\nq3,3\n"

	rdr := NewCSVReader(strings.NewReader(src))
	data, err := rdr.Read(-1)
	if err != nil {
		t.Fatal(err)
	}

	expected := make([]*Series, 2)
	expected[0], _ = NewSeries("name", []string{"q1", "q2", "q3"}, []bool{false, false, false})
	expected[1], _ = NewSeries("order", []float64{1, 2, 3}, []bool{false, false, false})

	if f, j, i := SeriesArray(data).AllEqual(expected); !f {
		t.Errorf("columns differ at column %d row %d", j, i)
	}
}

func TestCSVReadHints(t *testing.T) {

	src := "name,code\nq1,001\nq2,002\n"

	rdr := NewCSVReader(strings.NewReader(src))
	rdr.TypeHints = map[string]string{"code": "string"}
	data, err := rdr.Read(-1)
	if err != nil {
		t.Fatal(err)
	}

	x, _, err := data[1].AsStringSlice()
	if err != nil {
		t.Fatalf("hinted column inferred as %T", data[1].Data())
	}
	if x[0] != "001" {
		t.Errorf("leading zeros lost: %q", x[0])
	}
}

func TestCSVReadNoHeader(t *testing.T) {

	src := "a,1\nb,2\n"

	rdr := NewCSVReader(strings.NewReader(src))
	rdr.HasHeader = false
	data, err := rdr.Read(-1)
	if err != nil {
		t.Fatal(err)
	}

	if data[0].Name != "Column 1" || data[1].Name != "Column 2" {
		t.Errorf("generated names %q, %q", data[0].Name, data[1].Name)
	}
	if data[0].DataLength() != 2 {
		t.Errorf("read %d rows, want 2", data[0].DataLength())
	}
}

func TestCSVReadChunked(t *testing.T) {

	var sb strings.Builder
	sb.WriteString("name,order\n")
	rows := 250
	for i := 0; i < rows; i++ {
		sb.WriteString("q,1\n")
	}

	rdr := NewCSVReader(strings.NewReader(sb.String()))

	total := 0
	for {
		chunk, err := rdr.Read(100)
		if err != nil {
			t.Fatal(err)
		}
		if chunk[0].DataLength() == 0 {
			break
		}
		total += chunk[0].DataLength()
	}
	if total != rows {
		t.Errorf("read %d rows in chunks, want %d", total, rows)
	}
}

func TestCSVReadRagged(t *testing.T) {

	src := "name,value\nq1,1\nq2\n"

	rdr := NewCSVReader(strings.NewReader(src))
	data, err := rdr.Read(-1)
	if err != nil {
		t.Fatal(err)
	}

	if data[1].DataLength() != 2 {
		t.Fatalf("short line dropped: %d rows", data[1].DataLength())
	}
	miss := data[1].Missing()
	if miss == nil || !miss[1] {
		t.Error("missing field not masked")
	}
}
