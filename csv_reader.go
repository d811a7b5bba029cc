package nbdc

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// sniffLines is the number of records inspected for type inference.
const sniffLines = 100

// A CSVReader reads a delimited text file, such as an extracted data
// dictionary, into an array of Series with inferred column types.
type CSVReader struct {

	// If true, the first record is a header of column names;
	// otherwise positional names are generated.
	HasHeader bool

	// The column names, in file order.  Filled from the header or
	// generated; may be set by the caller to override both.
	ColumnNames []string

	// User-specified data types ("string" or "float64"), keyed by
	// column name.  Unhinted columns are inferred.
	TypeHints map[string]string

	// The resolved data type for each column.
	DataTypes []string

	initRun bool

	// Records read ahead for type sniffing, consumed before the
	// underlying reader is read again.
	lines [][]string

	csvreader *csv.Reader
}

// NewCSVReader returns a CSVReader that reads from the given io.Reader
// with a header row, type inference, and chunking.
func NewCSVReader(r io.Reader) *CSVReader {

	rdr := &CSVReader{HasHeader: true}
	rdr.csvreader = csv.NewReader(r)
	rdr.csvreader.FieldsPerRecord = -1

	return rdr
}

// rectifyLines pads ragged cached records to a common width.
func (rdr *CSVReader) rectifyLines() {

	mx := 0
	for _, line := range rdr.lines {
		if len(line) > mx {
			mx = len(line)
		}
	}

	for k, line := range rdr.lines {
		for len(line) < mx {
			line = append(line, "")
		}
		rdr.lines[k] = line
	}
}

// sniffTypes resolves a data type for every column, honoring hints
// and otherwise inferring float64 for columns whose cached values all
// parse as numbers.
func (rdr *CSVReader) sniffTypes() {

	nFloats := make([]int, len(rdr.ColumnNames))
	nObs := make([]int, len(rdr.ColumnNames))

	for _, line := range rdr.lines {
		for j, y := range line {
			if j >= len(nObs) {
				break
			}
			y = strings.TrimSpace(y)
			if len(y) == 0 {
				continue
			}
			nObs[j]++
			if _, err := strconv.ParseFloat(y, 64); err == nil {
				nFloats[j]++
			}
		}
	}

	rdr.DataTypes = make([]string, len(rdr.ColumnNames))
	for j, col := range rdr.ColumnNames {
		if t, ok := rdr.TypeHints[col]; ok {
			rdr.DataTypes[j] = t
		} else if nFloats[j] == nObs[j] && nObs[j] > 0 {
			rdr.DataTypes[j] = "float64"
		} else {
			rdr.DataTypes[j] = "string"
		}
	}
}

func (rdr *CSVReader) init() error {

	rdr.lines = make([][]string, 0, sniffLines)
	for k := 0; k < sniffLines; k++ {
		v, err := rdr.csvreader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		rdr.lines = append(rdr.lines, v)
	}

	if len(rdr.lines) == 0 {
		return fmt.Errorf("file appears to be empty")
	}

	rdr.rectifyLines()

	if rdr.ColumnNames == nil {
		if rdr.HasHeader {
			rdr.ColumnNames = rdr.lines[0]
			rdr.lines = rdr.lines[1:]
		} else {
			rdr.ColumnNames = make([]string, len(rdr.lines[0]))
			for k := range rdr.ColumnNames {
				rdr.ColumnNames[k] = fmt.Sprintf("Column %d", k+1)
			}
		}
	}

	if rdr.DataTypes == nil {
		rdr.sniffTypes()
	}

	rdr.initRun = true

	return nil
}

// Read reads up to lines records and returns them as an array of
// Series.  If lines is negative the whole file is read.  Data types
// are inferred from the file unless hinted through TypeHints.
func (rdr *CSVReader) Read(lines int) ([]*Series, error) {

	if !rdr.initRun {
		if err := rdr.init(); err != nil {
			return nil, err
		}
	}

	ncol := len(rdr.ColumnNames)
	dataArray := make([]interface{}, ncol)
	miss := make([][]bool, ncol)
	for j := range rdr.ColumnNames {
		switch rdr.DataTypes[j] {
		case "float64":
			dataArray[j] = make([]float64, 0, sniffLines)
		default:
			dataArray[j] = make([]string, 0, sniffLines)
		}
		miss[j] = make([]bool, 0, sniffLines)
	}

	numRows := 0
	for {
		if lines > 0 && numRows >= lines {
			break
		}

		var line []string
		if len(rdr.lines) > 0 {
			line = rdr.lines[0]
			rdr.lines = rdr.lines[1:]
		} else {
			var err error
			line, err = rdr.csvreader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, err
			}
		}

		for j := range rdr.ColumnNames {
			switch rdr.DataTypes[j] {
			case "float64":
				if j >= len(line) || strings.TrimSpace(line[j]) == "" {
					dataArray[j] = append(dataArray[j].([]float64), 0)
					miss[j] = append(miss[j], true)
				} else {
					x, err := strconv.ParseFloat(line[j], 64)
					miss[j] = append(miss[j], err != nil)
					dataArray[j] = append(dataArray[j].([]float64), x)
				}
			default:
				if j >= len(line) {
					dataArray[j] = append(dataArray[j].([]string), "")
					miss[j] = append(miss[j], true)
				} else {
					miss[j] = append(miss[j], false)
					dataArray[j] = append(dataArray[j].([]string), line[j])
				}
			}
		}

		numRows++
	}

	dataSeries := make([]*Series, ncol)
	for j := 0; j < ncol; j++ {
		var err error
		dataSeries[j], err = NewSeries(rdr.ColumnNames[j], dataArray[j], miss[j])
		if err != nil {
			return nil, err
		}
	}

	return dataSeries, nil
}
