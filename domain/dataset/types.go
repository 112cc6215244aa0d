package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColumnType classifies a column for analysis purposes
type ColumnType string

const (
	// TypeNumeric marks columns whose non-missing cells all parse as numbers
	TypeNumeric ColumnType = "numeric"
	// TypeCategorical marks all other columns, including free text and labels
	TypeCategorical ColumnType = "categorical"
)

// missingTokens are the cell values treated as missing after trimming,
// compared case-insensitively. The empty string is implicit.
var missingTokens = map[string]bool{
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// NormalizeCell trims a raw cell and maps missing tokens to the empty string
func NormalizeCell(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || missingTokens[strings.ToLower(s)] {
		return ""
	}
	return s
}

// Column holds one named column of cell data. Strings keeps the normalized
// cell text with "" where the cell is missing. Floats mirrors Strings for
// numeric columns with NaN where the cell is missing; it is nil for
// categorical columns.
type Column struct {
	Name    string
	Type    ColumnType
	Strings []string
	Floats  []float64
}

// Len returns the number of rows in the column
func (c *Column) Len() int {
	return len(c.Strings)
}

// IsNumeric reports whether the column was classified numeric
func (c *Column) IsNumeric() bool {
	return c.Type == TypeNumeric
}

// IsMissing reports whether the cell at row i holds no value
func (c *Column) IsMissing(i int) bool {
	if c.Type == TypeNumeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Strings[i] == ""
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for i := range c.Strings {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// NonMissing returns the parsed values of a numeric column with missing
// cells dropped. It returns nil for categorical columns.
func (c *Column) NonMissing() []float64 {
	if c.Type != TypeNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Floats))
	for _, v := range c.Floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// CellKey returns the canonical grouping string for the cell at row i.
// Numeric cells use the shortest float formatting so "1.0" and "1.00"
// group together. Missing cells return "".
func (c *Column) CellKey(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.Type == TypeNumeric {
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	}
	return c.Strings[i]
}

// Dataset is an ordered, read-only collection of equally sized columns.
// Row count and column order are fixed for the lifetime of a run.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a Dataset from fully prepared columns
func New(cols []Column) (*Dataset, error) {
	ds := &Dataset{
		cols:  cols,
		index: make(map[string]int, len(cols)),
	}
	for i := range cols {
		c := &cols[i]
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			ds.rows = c.Len()
		} else if c.Len() != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), ds.rows)
		}
		if c.Type == TypeNumeric && len(c.Floats) != len(c.Strings) {
			return nil, fmt.Errorf("numeric column %q has %d parsed values, want %d", c.Name, len(c.Floats), len(c.Strings))
		}
		ds.index[c.Name] = i
	}
	return ds, nil
}

// FromRecords builds a Dataset from raw records where the first record is
// the header row. Cells are normalized, headers deduplicated, and each
// column classified: a column is numeric iff every non-missing cell parses
// as a float; a column with no non-missing cells is numeric. Rows shorter
// than the header are padded with missing cells, longer rows truncated.
func FromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	headers := dedupeHeaders(records[0])
	if len(headers) == 0 {
		return nil, fmt.Errorf("header row has no columns")
	}
	body := records[1:]

	cols := make([]Column, len(headers))
	for j, name := range headers {
		cells := make([]string, len(body))
		for i, row := range body {
			if j < len(row) {
				cells[i] = NormalizeCell(row[j])
			}
		}
		cols[j] = classify(name, cells)
	}
	return New(cols)
}

func dedupeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = i
		out[i] = name
	}
	return out
}

func classify(name string, cells []string) Column {
	floats := make([]float64, len(cells))
	numeric := true
	for i, s := range cells {
		if s == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = v
	}
	if !numeric {
		return Column{Name: name, Type: TypeCategorical, Strings: cells}
	}
	return Column{Name: name, Type: TypeNumeric, Strings: cells, Floats: floats}
}

// RowCount returns the number of data rows
func (ds *Dataset) RowCount() int {
	return ds.rows
}

// ColumnCount returns the number of columns
func (ds *Dataset) ColumnCount() int {
	return len(ds.cols)
}

// Names returns the column names in dataset order
func (ds *Dataset) Names() []string {
	names := make([]string, len(ds.cols))
	for i := range ds.cols {
		names[i] = ds.cols[i].Name
	}
	return names
}

// Columns returns the columns in dataset order
func (ds *Dataset) Columns() []Column {
	return ds.cols
}

// Column returns the named column, or false when absent
func (ds *Dataset) Column(name string) (*Column, bool) {
	i, ok := ds.index[name]
	if !ok {
		return nil, false
	}
	return &ds.cols[i], true
}

// HasColumn reports whether the named column exists
func (ds *Dataset) HasColumn(name string) bool {
	_, ok := ds.index[name]
	return ok
}

// Head returns the header row plus up to n data rows of normalized cell
// text, missing cells rendered as "".
func (ds *Dataset) Head(n int) [][]string {
	if n > ds.rows {
		n = ds.rows
	}
	if n < 0 {
		n = 0
	}
	out := make([][]string, 0, n+1)
	out = append(out, ds.Names())
	for i := 0; i < n; i++ {
		row := make([]string, len(ds.cols))
		for j := range ds.cols {
			row[j] = ds.cols[j].Strings[i]
		}
		out = append(out, row)
	}
	return out
}

// Schema lists column names by classification, in dataset order
type Schema struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// BuildSchema classifies every column of the dataset once
func BuildSchema(ds *Dataset) Schema {
	var s Schema
	for _, c := range ds.Columns() {
		if c.IsNumeric() {
			s.Numeric = append(s.Numeric, c.Name)
		} else {
			s.Categorical = append(s.Categorical, c.Name)
		}
	}
	return s
}
