package analysis

// Summary is the top-level descriptive snapshot of a dataset
type Summary struct {
	RowCount           int            `json:"row_count"`
	ColumnCount        int            `json:"column_count"`
	Columns            []string       `json:"columns"`
	NumericColumns     []string       `json:"numeric_columns"`
	CategoricalColumns []string       `json:"categorical_columns"`
	MissingValues      map[string]int `json:"missing_values"`
	MemoryMB           float64        `json:"memory_mb"`
}

// NumericDescription holds distributional statistics for one numeric column
type NumericDescription struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// DescribeTable collects numeric descriptions in dataset column order
type DescribeTable struct {
	Rows []NumericDescription `json:"rows"`
}

// Empty reports whether the table has no rows
func (t DescribeTable) Empty() bool {
	return len(t.Rows) == 0
}

// CategoricalSummary describes one categorical column. MostFrequent is
// meaningful only when HasMostFrequent is true; an entirely missing column
// has no mode.
type CategoricalSummary struct {
	Column          string `json:"column"`
	UniqueCount     int    `json:"unique_count"`
	MostFrequent    string `json:"most_frequent,omitempty"`
	HasMostFrequent bool   `json:"has_most_frequent"`
	MissingCount    int    `json:"missing_count"`
}

// CorrelationMatrix holds pairwise Pearson coefficients over numeric
// columns, indexed by name both ways. The zero value (no columns) is the
// explicit empty marker returned when fewer than two numeric columns exist.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Empty reports whether the matrix is the no-correlation marker
func (m CorrelationMatrix) Empty() bool {
	return len(m.Columns) == 0
}

// At returns the coefficient for the (a, b) column pair
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	ai, bi := -1, -1
	for i, name := range m.Columns {
		if name == a {
			ai = i
		}
		if name == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0, false
	}
	return m.Values[ai][bi], true
}

// ValueCount is one distinct value's occurrence count
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts is the top-N frequency table for one column, descending by
// count with ties in first-encountered order
type ValueCounts struct {
	Column  string       `json:"column"`
	Entries []ValueCount `json:"entries"`
}
