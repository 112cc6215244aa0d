package analysis

import (
	"math"
	"sort"

	"datascope/domain/analysis"
	"datascope/domain/dataset"
	"datascope/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTopN is the value-count cutoff used when a caller passes a
// non-positive limit.
const DefaultTopN = 10

// Analyzer computes descriptive statistics over one dataset. The
// numeric/categorical schema is classified once at construction and cached;
// a changed dataset requires a new Analyzer. All operations are read-only
// and safe to call repeatedly in any order.
type Analyzer struct {
	ds     *dataset.Dataset
	schema dataset.Schema
}

// NewAnalyzer builds an Analyzer and fixes the dataset schema
func NewAnalyzer(ds *dataset.Dataset) *Analyzer {
	return &Analyzer{
		ds:     ds,
		schema: dataset.BuildSchema(ds),
	}
}

// Schema returns the cached column classification
func (a *Analyzer) Schema() dataset.Schema {
	return a.schema
}

// Dataset returns the analyzed dataset
func (a *Analyzer) Dataset() *dataset.Dataset {
	return a.ds
}

// Summary returns the top-level descriptive snapshot. It always succeeds.
func (a *Analyzer) Summary() analysis.Summary {
	cols := a.ds.Columns()
	missing := make(map[string]int, len(cols))
	for i := range cols {
		missing[cols[i].Name] = cols[i].MissingCount()
	}
	return analysis.Summary{
		RowCount:           a.ds.RowCount(),
		ColumnCount:        a.ds.ColumnCount(),
		Columns:            a.ds.Names(),
		NumericColumns:     a.schema.Numeric,
		CategoricalColumns: a.schema.Categorical,
		MissingValues:      missing,
		MemoryMB:           a.memoryEstimateMB(),
	}
}

// memoryEstimateMB is a best-effort footprint estimate: 8 bytes per numeric
// cell, 16 bytes plus text length per categorical cell, 48 bytes per column
// of bookkeeping.
func (a *Analyzer) memoryEstimateMB() float64 {
	bytes := 0
	cols := a.ds.Columns()
	for i := range cols {
		c := &cols[i]
		bytes += 48
		if c.IsNumeric() {
			bytes += 8 * c.Len()
			continue
		}
		for _, s := range c.Strings {
			bytes += 16 + len(s)
		}
	}
	return float64(bytes) / (1024 * 1024)
}

// DescribeNumeric returns count/mean/std/min/quartiles/max per numeric
// column, in dataset order. The table is empty when no numeric columns
// exist. Std uses the unbiased sample definition; quartiles use linear
// interpolation. Columns with no non-missing values report NaN statistics
// and a zero count.
func (a *Analyzer) DescribeNumeric() analysis.DescribeTable {
	var table analysis.DescribeTable
	for _, name := range a.schema.Numeric {
		col, _ := a.ds.Column(name)
		table.Rows = append(table.Rows, describeColumn(name, col.NonMissing()))
	}
	return table
}

func describeColumn(name string, values []float64) analysis.NumericDescription {
	d := analysis.NumericDescription{Column: name, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}

	d.Mean, _ = stats.Mean(values)
	d.Std, _ = stats.StandardDeviationSample(values)
	d.Min, _ = stats.Min(values)
	d.Max, _ = stats.Max(values)
	if len(values) == 1 {
		d.Std = math.NaN()
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	d.Q25 = quantile(sorted, 0.25)
	d.Median = quantile(sorted, 0.5)
	d.Q75 = quantile(sorted, 0.75)
	return d
}

// quantile interpolates linearly between the two nearest ranks of an
// already sorted sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// DescribeCategorical summarizes each categorical column in dataset order.
// The list is empty when no categorical columns exist. The mode is absent
// for entirely missing columns; ties resolve to the first-encountered value.
func (a *Analyzer) DescribeCategorical() []analysis.CategoricalSummary {
	out := make([]analysis.CategoricalSummary, 0, len(a.schema.Categorical))
	for _, name := range a.schema.Categorical {
		col, _ := a.ds.Column(name)
		s := analysis.CategoricalSummary{
			Column:       name,
			MissingCount: col.MissingCount(),
		}
		counts := countValues(col)
		s.UniqueCount = len(counts)
		if len(counts) > 0 {
			best := counts[0]
			for _, e := range counts[1:] {
				if e.Count > best.Count {
					best = e
				}
			}
			s.MostFrequent = best.Value
			s.HasMostFrequent = true
		}
		out = append(out, s)
	}
	return out
}

// CorrelationMatrix computes pairwise Pearson coefficients over the numeric
// columns. Fewer than two numeric columns yields the empty marker. Each
// pair uses only rows where both values are present; pairs with fewer than
// two complete rows, or zero variance, yield NaN.
func (a *Analyzer) CorrelationMatrix() analysis.CorrelationMatrix {
	if len(a.schema.Numeric) < 2 {
		return analysis.CorrelationMatrix{}
	}

	cols := make([]*dataset.Column, len(a.schema.Numeric))
	for i, name := range a.schema.Numeric {
		cols[i], _ = a.ds.Column(name)
	}

	n := len(cols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pairwiseCorrelation(cols[i].Floats, cols[j].Floats)
			values[i][j] = r
			values[j][i] = r
		}
	}
	return analysis.CorrelationMatrix{
		Columns: append([]string(nil), a.schema.Numeric...),
		Values:  values,
	}
}

// pairwiseCorrelation drops rows missing either value, then delegates to
// gonum. NaN signals an undefined coefficient.
func pairwiseCorrelation(x, y []float64) float64 {
	px := make([]float64, 0, len(x))
	py := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	if len(px) < 2 {
		return math.NaN()
	}
	return stat.Correlation(px, py, nil)
}

// ValueCounts returns the topN most frequent values of the named column,
// descending by count with ties in first-encountered order. Missing cells
// are excluded from the ranking. A non-positive topN falls back to
// DefaultTopN. Unknown columns fail with COLUMN_NOT_FOUND.
func (a *Analyzer) ValueCounts(column string, topN int) (analysis.ValueCounts, error) {
	col, ok := a.ds.Column(column)
	if !ok {
		return analysis.ValueCounts{}, errors.ColumnNotFound(column)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	entries := countValues(col)
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return analysis.ValueCounts{Column: column, Entries: entries}, nil
}

// countValues tallies non-missing cell keys in first-encountered order,
// then stable-sorts descending by count so ties keep encounter order.
func countValues(col *dataset.Column) []analysis.ValueCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		key := col.CellKey(i)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	entries := make([]analysis.ValueCount, len(order))
	for i, key := range order {
		entries[i] = analysis.ValueCount{Value: key, Count: counts[key]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
