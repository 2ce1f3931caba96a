package cipw

// Frame is a table of results keyed by input row.
type Frame struct {
	Index     []int       `json:"index"`
	IDColumns []string    `json:"id_columns,omitempty"`
	IDs       [][]string  `json:"ids,omitempty"`
	Columns   []string    `json:"columns"`
	Values    [][]float64 `json:"values"`
}

// Column returns the values of a column, or nil if the frame lacks it.
func (f *Frame) Column(name string) []float64 {
	j := f.columnIndex(name)
	if j < 0 {
		return nil
	}
	out := make([]float64, len(f.Values))
	for i, row := range f.Values {
		out[i] = row[j]
	}
	return out
}

// Value returns one cell. Missing columns read as zero, the same as a
// dropped all-zero column.
func (f *Frame) Value(row int, name string) float64 {
	j := f.columnIndex(name)
	if j < 0 || row < 0 || row >= len(f.Values) {
		return 0
	}
	return f.Values[row][j]
}

func (f *Frame) columnIndex(name string) int {
	for j, c := range f.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// frameKeep decides which columns survive; keep receives the column
// position and whether any sample has a non-zero value there.
type frameKeep func(col int, nonZero bool) bool

func keepAll(int, bool) bool { return true }

func keepNonZero(_ int, nonZero bool) bool { return nonZero }

func keepNonZeroOrTotal(col int, nonZero bool) bool {
	return nonZero || col == partitionIndex["Total"]
}

func buildFrame(samples []SampleNorm, idColumns []string, names []string, values func(*SampleNorm) []float64, keep frameKeep) Frame {
	f := Frame{
		Index:     make([]int, len(samples)),
		IDColumns: idColumns,
	}
	if len(idColumns) > 0 {
		f.IDs = make([][]string, len(samples))
	}

	var cols []int
	for j := range names {
		nonZero := false
		for i := range samples {
			if values(&samples[i])[j] != 0 {
				nonZero = true
				break
			}
		}
		if keep(j, nonZero) {
			cols = append(cols, j)
			f.Columns = append(f.Columns, names[j])
		}
	}

	f.Values = make([][]float64, len(samples))
	for i := range samples {
		s := &samples[i]
		f.Index[i] = s.Index
		if f.IDs != nil {
			f.IDs[i] = s.ID
		}
		v := values(s)
		row := make([]float64, len(cols))
		for k, j := range cols {
			row[k] = v[j]
		}
		f.Values[i] = row
	}
	return f
}

func (r *Result) buildFrames(idColumns []string) {
	r.Partitions = buildFrame(r.Samples, idColumns, partitionColumns[:],
		func(s *SampleNorm) []float64 { return s.partitions[:] }, keepNonZeroOrTotal)
	r.Free = buildFrame(r.Samples, idColumns, freeColumns[:],
		func(s *SampleNorm) []float64 { return s.free[:] }, keepNonZero)
	r.Supplementary = buildFrame(r.Samples, idColumns, supplementaryColumns[:],
		func(s *SampleNorm) []float64 { return s.supplementary[:] }, keepAll)
}
