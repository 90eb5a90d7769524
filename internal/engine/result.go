package engine

// Result is the time series produced by one completed run, plus the static
// name-to-unit mapping downstream consumers need to label it.
//
// Columns starts with "time" followed by every stock, auxiliary and flow
// name in declaration order. Each row holds one value per column, recorded
// at the start of the step's interval, before that step's updates applied.
type Result struct {
	Columns []string
	Rows    [][]float64
	Units   map[string]string
}

// Column returns the values of the named column across all rows. The second
// return is false when the column does not exist.
func (r *Result) Column(name string) ([]float64, bool) {
	col := -1
	for i, c := range r.Columns {
		if c == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[col]
	}
	return out, true
}
