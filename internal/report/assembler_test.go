package report

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"datascope/domain/analysis"
	"datascope/domain/report"
	"datascope/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake")

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError, io.Discard)
}

func writeArtifact(t *testing.T, dir, name string) report.ChartArtifact {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, fakePNG, 0o644))
	return report.ChartArtifact{Kind: report.KindDistribution, Path: path, Title: name}
}

func makeInput(artifacts []report.ChartArtifact) Input {
	return Input{
		Title: "Analysis Report: orders.csv",
		Summary: analysis.Summary{
			RowCount:           4,
			ColumnCount:        2,
			Columns:            []string{"price", "region"},
			NumericColumns:     []string{"price"},
			CategoricalColumns: []string{"region"},
			MissingValues:      map[string]int{"price": 1, "region": 0},
			MemoryMB:           0.01,
		},
		Describe: analysis.DescribeTable{Rows: []analysis.NumericDescription{{
			Column: "price", Count: 3, Mean: 20, Std: 10,
			Min: 10, Q25: 15, Median: 20, Q75: 25, Max: 30,
		}}},
		Categorical: []analysis.CategoricalSummary{{
			Column: "region", UniqueCount: 2, MostFrequent: "north", HasMostFrequent: true,
		}},
		Artifacts: artifacts,
	}
}

func TestAssembleWritesReport(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, quietLogger())

	rep, err := a.Assemble(makeInput(nil))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, FileName), rep.Path)
	html, err := os.ReadFile(rep.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(html), "<!DOCTYPE html>"))
	assert.Contains(t, string(html), "Analysis Report: orders.csv")
	assert.Contains(t, string(html), "4 rows")
}

func TestAssembleFiltersDanglingArtifacts(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	a := NewAssembler(dir, quietLogger())

	arts := []report.ChartArtifact{
		writeArtifact(t, dir, "distribution_price.png"),
		writeArtifact(t, dir, "box_price.png"),
		{Kind: report.KindScatter, Path: filepath.Join(dir, "never_written.png"), Title: "gone"},
		writeArtifact(t, other, "elsewhere.png"),
	}

	rep, err := a.Assemble(makeInput(arts))
	require.NoError(t, err)
	require.Len(t, rep.Artifacts, 2)

	html, err := os.ReadFile(rep.Path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(html), "<img "))
	assert.Contains(t, string(html), `src="distribution_price.png"`)
	assert.Contains(t, string(html), "<figcaption>distribution_price.png</figcaption>")
	assert.Contains(t, string(html), `src="box_price.png"`)
	assert.NotContains(t, string(html), "never_written.png")
	assert.NotContains(t, string(html), "elsewhere.png")
}

func TestAssembleNarrativeEscaping(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, quietLogger())

	in := makeInput(nil)
	in.Narrative = "Revenue is up.\nWatch the <script> column & co."

	rep, err := a.Assemble(in)
	require.NoError(t, err)

	html, err := os.ReadFile(rep.Path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Insights")
	assert.Contains(t, string(html), "Revenue is up.<br>")
	assert.Contains(t, string(html), "&lt;script&gt;")
	assert.Contains(t, string(html), "&amp; co.")
	assert.NotContains(t, string(html), "<script>")
}

func TestAssembleOmitsEmptySections(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, quietLogger())

	in := makeInput(nil)
	in.Narrative = "   \n  "

	rep, err := a.Assemble(in)
	require.NoError(t, err)

	html, err := os.ReadFile(rep.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "Insights")
	assert.NotContains(t, string(html), "Correlations", "empty matrix renders no section")
	assert.NotContains(t, string(html), "Charts")
}

func TestAssembleCorrelationTable(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, quietLogger())

	in := makeInput(nil)
	in.Correlation = analysis.CorrelationMatrix{
		Columns: []string{"price", "units"},
		Values: [][]float64{
			{1, math.NaN()},
			{math.NaN(), 1},
		},
	}

	rep, err := a.Assemble(in)
	require.NoError(t, err)

	html, err := os.ReadFile(rep.Path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Correlations")
	assert.Contains(t, string(html), "1.000")
	assert.Contains(t, string(html), "NaN")
}

func TestAssembleDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, quietLogger())
	arts := []report.ChartArtifact{writeArtifact(t, dir, "dashboard.png")}

	rep1, err := a.Assemble(makeInput(arts))
	require.NoError(t, err)
	first, err := os.ReadFile(rep1.Path)
	require.NoError(t, err)

	rep2, err := a.Assemble(makeInput(arts))
	require.NoError(t, err)
	second, err := os.ReadFile(rep2.Path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
