package nbdc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// listSep joins the elements of a list-valued cell into one text field.
const listSep = "; "

// A Series is a fixed-type one-dimensional column of a data
// dictionary, with an optional mask for missing values.
//
// A Series carries a declared length that the data slice is expected
// to match.  Columns decoded from a deferred table view may hold no
// data at all while still declaring a positive length; such columns
// are repaired by DataTable.Materialize before use.
type Series struct {

	// A name describing what is in this series.
	Name string

	// The declared length of the series.
	length int

	// The data, a slice of scalars ([]string, []float64, []bool)
	// or of string lists ([][]string).  May be shorter than the
	// declared length for deferred or defective columns.
	data interface{}

	// Indicators that data values are missing.  If nil, there are
	// no missing values.
	missing []bool

	// Generator for a deferred column, covering the row range
	// [first, last).  Nil once the series holds concrete data.
	build func(first, last int) (interface{}, []bool, error)
}

// ilen returns the length of a slice held in an interface value.  If
// the interface does not hold a slice of a supported type, an error
// is returned.
func ilen(data interface{}) (int, error) {

	switch v := data.(type) {
	case nil:
		return 0, nil
	case []string:
		return len(v), nil
	case []float64:
		return len(v), nil
	case []bool:
		return len(v), nil
	case [][]string:
		return len(v), nil
	default:
		return 0, fmt.Errorf("unknown data type %T", data)
	}
}

// NewSeries returns a new Series with the given name and data
// contents.  The data slice parameter is not copied.
func NewSeries(name string, data interface{}, missing []bool) (*Series, error) {

	length, err := ilen(data)
	if err != nil {
		return nil, err
	}

	ser := Series{
		Name:    name,
		length:  length,
		data:    data,
		missing: missing,
	}

	return &ser, nil
}

// NewDeferredSeries returns a Series that declares the given length
// but holds no data until the builder is run.
func NewDeferredSeries(name string, length int, build func(first, last int) (interface{}, []bool, error)) *Series {

	return &Series{
		Name:   name,
		length: length,
		build:  build,
	}
}

// Length returns the declared number of elements in the Series.
func (ser *Series) Length() int {
	return ser.length
}

// DataLength returns the number of elements actually held by the
// Series.  For a healthy series this equals Length; for a deferred or
// defectively deserialized series it is smaller, usually zero.
func (ser *Series) DataLength() int {
	n, err := ilen(ser.data)
	if err != nil {
		panic(err)
	}
	return n
}

// Data returns the data component of the Series.
func (ser *Series) Data() interface{} {
	return ser.data
}

// Missing returns the array of missing value indicators.
func (ser *Series) Missing() []bool {
	return ser.missing
}

// Deferred returns true if the series has a pending builder.
func (ser *Series) Deferred() bool {
	return ser.build != nil
}

// Force runs a deferred builder over the full declared range and
// installs the resulting data.  It is a no-op for a concrete series.
func (ser *Series) Force() error {

	if ser.build == nil {
		return nil
	}

	data, miss, err := ser.build(0, ser.length)
	if err != nil {
		return err
	}
	n, err := ilen(data)
	if err != nil {
		return err
	}
	if n != ser.length {
		return fmt.Errorf("%s: builder produced %d values, want %d", ser.Name, n, ser.length)
	}

	ser.data = data
	ser.missing = miss
	ser.build = nil

	return nil
}

// forceRange runs the builder over [first, last) and returns the
// values without mutating the series.
func (ser *Series) forceRange(first, last int) (interface{}, []bool, error) {

	if ser.build == nil {
		return nil, nil, fmt.Errorf("%s: no builder attached", ser.Name)
	}
	return ser.build(first, last)
}

// CountMissing returns the number of missing values in the Series.
func (ser *Series) CountMissing() int {

	m := 0
	for i := 0; i < len(ser.missing); i++ {
		if ser.missing[i] {
			m++
		}
	}

	return m
}

// joinList renders one list-valued cell as delimited text.  An empty
// or nil list has no rendering and is reported as missing.
func joinList(v []string) (string, bool) {
	if len(v) == 0 {
		return "", true
	}
	return strings.Join(v, listSep), false
}

// FlattenLists returns a string series in which each list-valued cell
// is replaced by its elements joined with "; ".  Empty and absent
// lists become missing values.  The second return value reports
// whether the series held lists.  Scalar series are returned
// unchanged.
func (ser *Series) FlattenLists() (*Series, bool) {

	v, ok := ser.data.([][]string)
	if !ok {
		return ser, false
	}

	n := len(v)
	cmiss := make([]bool, n)
	if ser.missing != nil {
		copy(cmiss, ser.missing)
	}

	x := make([]string, n)
	for i := 0; i < n; i++ {
		if cmiss[i] {
			continue
		}
		s, empty := joinList(v[i])
		x[i] = s
		if empty {
			cmiss[i] = true
		}
	}

	s, _ := NewSeries(ser.Name, x, cmiss)
	s.length = ser.length
	return s, true
}

// ToString returns a Series with string values derived from the given
// series.  Missing elements produce empty strings with the mask
// preserved.  List-valued series are flattened first.
func (ser *Series) ToString() *Series {

	n := ser.DataLength()
	cmiss := make([]bool, n)
	if ser.missing != nil {
		copy(cmiss, ser.missing)
	}

	switch y := ser.data.(type) {
	default:
		panic(fmt.Sprintf("unknown data type %T in ToString", ser.data))
	case nil:
		s, _ := NewSeries(ser.Name, []string{}, nil)
		s.length = ser.length
		return s
	case []string:
		return ser
	case [][]string:
		s, _ := ser.FlattenLists()
		return s
	case []float64:
		x := make([]string, n)
		for i := 0; i < n; i++ {
			if !cmiss[i] && !math.IsNaN(y[i]) {
				x[i] = strconv.FormatFloat(y[i], 'f', -1, 64)
			} else {
				cmiss[i] = true
			}
		}
		s, _ := NewSeries(ser.Name, x, cmiss)
		s.length = ser.length
		return s
	case []bool:
		x := make([]string, n)
		for i := 0; i < n; i++ {
			if !cmiss[i] {
				x[i] = strconv.FormatBool(y[i])
			}
		}
		s, _ := NewSeries(ser.Name, x, cmiss)
		s.length = ser.length
		return s
	}
}

// PadTo right-pads a string series with missing values until it holds
// n elements, returning the padded series and the number of values
// added.  Series already holding n or more values are unchanged.
func (ser *Series) PadTo(n int) (*Series, int) {

	x, ok := ser.data.([]string)
	if !ok {
		panic(fmt.Sprintf("PadTo requires a string series, have %T", ser.data))
	}
	if len(x) >= n {
		return ser, 0
	}

	added := n - len(x)
	y := make([]string, n)
	copy(y, x)
	cmiss := make([]bool, n)
	if ser.missing != nil {
		copy(cmiss, ser.missing)
	}
	for i := len(x); i < n; i++ {
		cmiss[i] = true
	}

	s, _ := NewSeries(ser.Name, y, cmiss)
	return s, added
}

// StringAt renders the element at position i as text, together with a
// missing indicator.  It works on any concrete data kind and is the
// per-cell fallback used by chunked extraction.
func (ser *Series) StringAt(i int) (string, bool) {

	if ser.missing != nil && i < len(ser.missing) && ser.missing[i] {
		return "", true
	}

	switch y := ser.data.(type) {
	case []string:
		if i >= len(y) {
			return "", true
		}
		return y[i], false
	case []float64:
		if i >= len(y) || math.IsNaN(y[i]) {
			return "", true
		}
		return strconv.FormatFloat(y[i], 'f', -1, 64), false
	case []bool:
		if i >= len(y) {
			return "", true
		}
		return strconv.FormatBool(y[i]), false
	case [][]string:
		if i >= len(y) {
			return "", true
		}
		return joinList(y[i])
	default:
		return "", true
	}
}

// AsStringSlice returns the series data as slices for the values and
// the missing data indicators.
func (ser *Series) AsStringSlice() ([]string, []bool, error) {

	v, ok := ser.data.([]string)
	if !ok {
		return nil, nil, fmt.Errorf("can't convert %T to []string", ser.data)
	}

	return v, ser.missing, nil
}

// AllClose returns true, 0 if the Series is within tol of the other
// series.  If the lengths differ, AllClose returns false, -1.  If the
// types differ, false, -2.  Otherwise false, j where j is the first
// position at which the two series differ.
func (ser *Series) AllClose(other *Series, tol float64) (bool, int) {

	if ser.DataLength() != other.DataLength() {
		return false, -1
	}

	n := ser.DataLength()

	cmiss := func(j int) int {
		f1 := (ser.missing == nil) || !ser.missing[j]
		f2 := (other.missing == nil) || !other.missing[j]
		if f1 != f2 {
			return 0 // inconsistent
		} else if f1 {
			return 1 // both non-missing
		} else {
			return 2 // both missing
		}
	}

	switch u := ser.data.(type) {
	default:
		panic(fmt.Sprintf("unknown type %T in Series.AllClose", ser.data))
	case nil:
		if other.data != nil {
			return false, -2
		}
	case []float64:
		v, ok := other.data.([]float64)
		if !ok {
			return false, -2
		}
		for j := 0; j < n; j++ {
			c := cmiss(j)
			if c == 0 {
				return false, j
			}
			if c == 1 && math.Abs(u[j]-v[j]) > tol {
				return false, j
			}
		}
	case []bool:
		v, ok := other.data.([]bool)
		if !ok {
			return false, -2
		}
		for j := 0; j < n; j++ {
			c := cmiss(j)
			if c == 0 {
				return false, j
			}
			if c == 1 && u[j] != v[j] {
				return false, j
			}
		}
	case []string:
		v, ok := other.data.([]string)
		if !ok {
			return false, -2
		}
		for j := 0; j < n; j++ {
			c := cmiss(j)
			if c == 0 {
				return false, j
			}
			if c == 1 && u[j] != v[j] {
				return false, j
			}
		}
	case [][]string:
		v, ok := other.data.([][]string)
		if !ok {
			return false, -2
		}
		for j := 0; j < n; j++ {
			c := cmiss(j)
			if c == 0 {
				return false, j
			}
			if c == 1 && strings.Join(u[j], listSep) != strings.Join(v[j], listSep) {
				return false, j
			}
		}
	}

	return true, 0
}

// AllEqual is equivalent to AllClose with tol=0.
func (ser *Series) AllEqual(other *Series) (bool, int) {
	return ser.AllClose(other, 0.0)
}

// SeriesArray is an array of pointers to Series objects.  It can
// represent a data set consisting of several variables.
type SeriesArray []*Series

// AllClose returns (true, 0, 0) if all values in corresponding
// columns of the two arrays are within the given tolerance.
// Otherwise it returns (false, j, i) locating the first difference,
// with the sentinel values documented on Series.AllClose.
func (ser SeriesArray) AllClose(other []*Series, tol float64) (bool, int, int) {

	if len(ser) != len(other) {
		return false, -1, -1
	}

	for j := 0; j < len(ser); j++ {
		f, i := ser[j].AllClose(other[j], tol)
		if !f {
			return false, j, i
		}
	}

	return true, 0, 0
}

// AllEqual is equivalent to AllClose with tol = 0.
func (ser SeriesArray) AllEqual(other []*Series) (bool, int, int) {
	return ser.AllClose(other, 0.0)
}
