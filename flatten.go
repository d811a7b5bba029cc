package nbdc

// Flatten converts a materialized table to textual output columns.
// Every column is coerced to string form, with list-valued cells
// joined by "; ".  Columns that come up short of the declared row
// count are right-padded with missing values.  Materialize must
// already have run; padding covers residual per-column shortfalls in
// the archived data itself.
//
// The returned slices name the columns that were flattened and the
// columns that required padding.
func Flatten(t *DataTable) (SeriesArray, []string, []string) {

	var flattened, padded []string

	out := make(SeriesArray, len(t.cols))
	for j, c := range t.cols {

		s, changed := c.FlattenLists()
		if changed {
			flattened = append(flattened, c.Name)
		}

		s = s.ToString()

		s, added := s.PadTo(t.nrows)
		if added > 0 {
			padded = append(padded, c.Name)
		}

		out[j] = s
	}

	return out, flattened, padded
}
