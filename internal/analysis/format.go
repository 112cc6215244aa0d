package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"datascope/domain/analysis"
)

// The Format helpers render analysis results as fixed-width text for the
// console and for narrative prompts. Output is deterministic for equal
// inputs.

func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// FormatSummary renders the dataset snapshot as labeled lines
func FormatSummary(s analysis.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rows:                %d\n", s.RowCount)
	fmt.Fprintf(&sb, "Columns:             %d\n", s.ColumnCount)
	fmt.Fprintf(&sb, "Numeric columns:     %s\n", joinOrNone(s.NumericColumns))
	fmt.Fprintf(&sb, "Categorical columns: %s\n", joinOrNone(s.CategoricalColumns))
	fmt.Fprintf(&sb, "Memory (MB):         %s\n", formatFloat(s.MemoryMB, 2))
	sb.WriteString("Missing values:\n")
	for _, name := range s.Columns {
		fmt.Fprintf(&sb, "  %s: %d\n", name, s.MissingValues[name])
	}
	return sb.String()
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

// FormatDescribe renders the numeric describe table
func FormatDescribe(t analysis.DescribeTable) string {
	if t.Empty() {
		return "(no numeric columns)\n"
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
	for _, r := range t.Rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Column, r.Count,
			formatFloat(r.Mean, 4), formatFloat(r.Std, 4),
			formatFloat(r.Min, 4), formatFloat(r.Q25, 4),
			formatFloat(r.Median, 4), formatFloat(r.Q75, 4),
			formatFloat(r.Max, 4))
	}
	w.Flush()
	return sb.String()
}

// FormatCategorical renders the categorical summary table
func FormatCategorical(list []analysis.CategoricalSummary) string {
	if len(list) == 0 {
		return "(no categorical columns)\n"
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "column\tunique\ttop\tmissing")
	for _, s := range list {
		top := "-"
		if s.HasMostFrequent {
			top = s.MostFrequent
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", s.Column, s.UniqueCount, top, s.MissingCount)
	}
	w.Flush()
	return sb.String()
}

// FormatCorrelation renders the correlation matrix with 3-decimal cells
func FormatCorrelation(m analysis.CorrelationMatrix) string {
	if m.Empty() {
		return "(fewer than two numeric columns)\n"
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "\t%s\n", strings.Join(m.Columns, "\t"))
	for i, name := range m.Columns {
		cells := make([]string, len(m.Columns))
		for j := range m.Columns {
			cells[j] = formatFloat(m.Values[i][j], 3)
		}
		fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(cells, "\t"))
	}
	w.Flush()
	return sb.String()
}

// FormatValueCounts renders one column's top-value listing
func FormatValueCounts(vc analysis.ValueCounts) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", vc.Column)
	if len(vc.Entries) == 0 {
		sb.WriteString("  (no values)\n")
		return sb.String()
	}
	for _, e := range vc.Entries {
		fmt.Fprintf(&sb, "  %s: %d\n", e.Value, e.Count)
	}
	return sb.String()
}
