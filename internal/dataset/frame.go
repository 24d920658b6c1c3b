package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Frame is an in-memory tabular dataset with named columns, loaded from a
// delimited file with a header row. Cells are kept as raw strings; numeric
// feature matrices are extracted on demand.
type Frame struct {
	Columns []string
	Records [][]string

	index map[string]int
}

// NewFrame builds a frame from a header and row data. Rows with a cell count
// different from the header are rejected.
func NewFrame(columns []string, records [][]string) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, ok := index[col]; ok {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		index[col] = i
	}
	for i, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d columns", i, len(rec), len(columns))
		}
	}
	return &Frame{Columns: columns, Records: records, index: index}, nil
}

// ReadCSV loads a CSV file with a header row into a frame.
func ReadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}
	return NewFrame(rows[0], rows[1:])
}

// NumRows returns the number of data rows in the frame.
func (f *Frame) NumRows() int { return len(f.Records) }

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// MissingColumns returns the subset of names not present in the frame, in
// the order given.
func (f *Frame) MissingColumns(names []string) []string {
	var missing []string
	for _, name := range names {
		if !f.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Column returns the raw string values of a column.
func (f *Frame) Column(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(f.Records))
	for i, rec := range f.Records {
		values[i] = rec[idx]
	}
	return values, nil
}

// Matrix extracts the named columns as a row-major numeric matrix, in the
// order given. Non-numeric cells are an error.
func (f *Frame) Matrix(columns []string) ([][]float64, error) {
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx, ok := f.index[col]
		if !ok {
			return nil, fmt.Errorf("column %q not found", col)
		}
		indices[i] = idx
	}

	matrix := make([][]float64, len(f.Records))
	for i, rec := range f.Records {
		row := make([]float64, len(indices))
		for j, idx := range indices {
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: non-numeric value %q", i, columns[j], rec[idx])
			}
			row[j] = v
		}
		matrix[i] = row
	}
	return matrix, nil
}

// EncodeLabels maps the string values of a column onto integer class ids.
// Classes are sorted so the encoding does not depend on row order.
func EncodeLabels(values []string) (classes []string, encoded []int) {
	seen := make(map[string]bool, 4)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)

	ids := make(map[string]int, len(classes))
	for i, c := range classes {
		ids[c] = i
	}
	encoded = make([]int, len(values))
	for i, v := range values {
		encoded[i] = ids[v]
	}
	return classes, encoded
}
