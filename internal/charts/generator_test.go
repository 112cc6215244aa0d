package charts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"datascope/domain/dataset"
	"datascope/domain/render"
	"datascope/domain/report"
	"datascope/internal"
	"datascope/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake")

type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	bars  []render.BarSpec
}

func (f *fakeRenderer) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if f.fail[method] {
		return fmt.Errorf("%s render failed", method)
	}
	return nil
}

func (f *fakeRenderer) Heatmap(render.HeatmapSpec) ([]byte, error) {
	if err := f.record("heatmap"); err != nil {
		return nil, err
	}
	return fakePNG, nil
}

func (f *fakeRenderer) Histogram(render.HistogramSpec) ([]byte, error) {
	if err := f.record("histogram"); err != nil {
		return nil, err
	}
	return fakePNG, nil
}

func (f *fakeRenderer) Bar(spec render.BarSpec) ([]byte, error) {
	if err := f.record("bar"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.bars = append(f.bars, spec)
	f.mu.Unlock()
	return fakePNG, nil
}

func (f *fakeRenderer) Scatter(render.ScatterSpec) ([]byte, error) {
	if err := f.record("scatter"); err != nil {
		return nil, err
	}
	return fakePNG, nil
}

func (f *fakeRenderer) Box(render.BoxSpec) ([]byte, error) {
	if err := f.record("box"); err != nil {
		return nil, err
	}
	return fakePNG, nil
}

func (f *fakeRenderer) Dashboard(render.DashboardSpec) ([]byte, error) {
	if err := f.record("dashboard"); err != nil {
		return nil, err
	}
	return fakePNG, nil
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError, io.Discard)
}

func newTestGenerator(t *testing.T, records [][]string, r *fakeRenderer, opts Options) (*Generator, string) {
	t.Helper()
	ds, err := dataset.FromRecords(records)
	require.NoError(t, err)
	dir := t.TempDir()
	g := NewGenerator(analysis.NewAnalyzer(ds), r, dir, render.DefaultConfig(), opts, quietLogger())
	return g, dir
}

func mixedRecords() [][]string {
	return [][]string{
		{"region", "price", "units", "discount"},
		{"north", "10", "1", ""},
		{"south", "20", "2", "0.1"},
		{"north", "30", "3", "0.2"},
		{"east", "40", "4", ""},
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sales (USD)!", "Sales__USD__"},
		{"plain_column-1.2", "plain_column-1.2"},
		{"a b", "a_b"},
		{"über", "_ber"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeName(tc.in), "input %q", tc.in)
	}
}

func TestGenerateAllCatalogueOrder(t *testing.T) {
	r := &fakeRenderer{}
	g, dir := newTestGenerator(t, mixedRecords(), r, Options{})

	artifacts := g.GenerateAll(context.Background())

	wantKinds := []report.Kind{
		report.KindCorrelationHeatmap,
		report.KindDashboard,
		report.KindScatter,
		report.KindDistribution, report.KindBox,
		report.KindDistribution, report.KindBox,
		report.KindDistribution, report.KindBox,
		report.KindValueCounts, report.KindValueCounts,
		report.KindValueCounts, report.KindValueCounts,
		report.KindMissingValues,
	}
	require.Len(t, artifacts, len(wantKinds))
	for i, a := range artifacts {
		assert.Equal(t, wantKinds[i], a.Kind, "artifact %d", i)
	}

	wantNames := []string{
		"correlation_heatmap.png",
		"dashboard.png",
		"scatter_price_vs_units.png",
		"distribution_price.png", "box_price.png",
		"distribution_units.png", "box_units.png",
		"distribution_discount.png", "box_discount.png",
		"value_counts_region.png", "value_counts_price.png",
		"value_counts_units.png", "value_counts_discount.png",
		"missing_values.png",
	}
	for i, a := range artifacts {
		assert.Equal(t, wantNames[i], filepath.Base(a.Path), "artifact %d", i)
		info, err := os.Stat(a.Path)
		require.NoError(t, err, "artifact %d not on disk", i)
		assert.Greater(t, info.Size(), int64(0))
		assert.Equal(t, dir, filepath.Dir(a.Path))
	}
}

func TestGenerateAllCompleteDatasetOmitsMissingChart(t *testing.T) {
	records := [][]string{
		{"x", "y"},
		{"1", "2"},
		{"3", "4"},
	}
	g, _ := newTestGenerator(t, records, &fakeRenderer{}, Options{})

	for _, a := range g.GenerateAll(context.Background()) {
		assert.NotEqual(t, report.KindMissingValues, a.Kind)
	}
}

func TestGenerateAllSingleNumericColumn(t *testing.T) {
	records := [][]string{
		{"only"},
		{"1"},
		{"2"},
		{"3"},
	}
	g, _ := newTestGenerator(t, records, &fakeRenderer{}, Options{})

	artifacts := g.GenerateAll(context.Background())
	kinds := make([]report.Kind, len(artifacts))
	for i, a := range artifacts {
		kinds[i] = a.Kind
	}
	assert.Equal(t, []report.Kind{
		report.KindDistribution,
		report.KindBox,
		report.KindValueCounts,
	}, kinds)
}

func TestGenerateAllIsolatesChartFailures(t *testing.T) {
	r := &fakeRenderer{fail: map[string]bool{"histogram": true}}
	g, _ := newTestGenerator(t, mixedRecords(), r, Options{})

	artifacts := g.GenerateAll(context.Background())

	require.Len(t, artifacts, 11)
	for _, a := range artifacts {
		assert.NotEqual(t, report.KindDistribution, a.Kind)
	}
	// Charts after the failed ones still ran.
	assert.Equal(t, report.KindMissingValues, artifacts[len(artifacts)-1].Kind)
}

func TestGenerateAllParallelKeepsOrder(t *testing.T) {
	seqG, _ := newTestGenerator(t, mixedRecords(), &fakeRenderer{}, Options{})
	parG, _ := newTestGenerator(t, mixedRecords(), &fakeRenderer{}, Options{Workers: 4})

	seq := seqG.GenerateAll(context.Background())
	par := parG.GenerateAll(context.Background())

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Kind, par[i].Kind, "artifact %d", i)
		assert.Equal(t, filepath.Base(seq[i].Path), filepath.Base(par[i].Path), "artifact %d", i)
	}
}

func TestValueCountsBarLimitsBars(t *testing.T) {
	records := [][]string{{"code"}}
	for i := 0; i < 20; i++ {
		// i+1 occurrences of value v<i> keeps counts distinct.
		for j := 0; j <= i; j++ {
			records = append(records, []string{fmt.Sprintf("v%02d", i)})
		}
	}
	r := &fakeRenderer{}
	g, _ := newTestGenerator(t, records, r, Options{})

	art, err := g.ValueCountsBar("code", 0)
	require.NoError(t, err)
	require.NotNil(t, art)
	require.Len(t, r.bars, 1)

	spec := r.bars[0]
	assert.Len(t, spec.Labels, 15)
	assert.Equal(t, "v19", spec.Labels[0])
	for i := 1; i < len(spec.Values); i++ {
		assert.LessOrEqual(t, spec.Values[i], spec.Values[i-1])
	}
}

func TestValueCountsBarPreconditions(t *testing.T) {
	records := [][]string{
		{"name", "empty"},
		{"a", "na"},
		{"b", "null"},
	}
	g, _ := newTestGenerator(t, records, &fakeRenderer{}, Options{})

	art, err := g.ValueCountsBar("nope", defaultBarTopN)
	assert.NoError(t, err)
	assert.Nil(t, art)

	// All cells missing leaves nothing to count.
	art, err = g.ValueCountsBar("empty", defaultBarTopN)
	assert.NoError(t, err)
	assert.Nil(t, art)
}

func TestDistributionPreconditions(t *testing.T) {
	records := [][]string{
		{"region", "blank"},
		{"north", "nan"},
		{"south", "nan"},
	}
	g, _ := newTestGenerator(t, records, &fakeRenderer{}, Options{})

	art, err := g.Distribution("region")
	assert.NoError(t, err)
	assert.Nil(t, art, "categorical column is not plottable")

	art, err = g.Distribution("blank")
	assert.NoError(t, err)
	assert.Nil(t, art, "all-missing numeric column is not plottable")

	art, err = g.Distribution("gone")
	assert.NoError(t, err)
	assert.Nil(t, art)
}

func TestScatterRequiresTwoCompletePairs(t *testing.T) {
	records := [][]string{
		{"x", "y"},
		{"1", "2"},
		{"3", ""},
		{"", "4"},
	}
	g, _ := newTestGenerator(t, records, &fakeRenderer{}, Options{})

	art, err := g.Scatter("x", "y")
	assert.NoError(t, err)
	assert.Nil(t, art)
}

func TestMissingValuesAscendingOrder(t *testing.T) {
	records := [][]string{
		{"a", "b", "c"},
		{"", "1", "x"},
		{"", "", "y"},
		{"", "3", "z"},
	}
	r := &fakeRenderer{}
	g, _ := newTestGenerator(t, records, r, Options{})

	art, err := g.MissingValues()
	require.NoError(t, err)
	require.NotNil(t, art)

	// b has one missing cell, a has three, c none.
	assert.Equal(t, []string{"b", "a"}, art.Columns)
	require.Len(t, r.bars, 1)
	assert.Equal(t, []float64{1, 3}, r.bars[0].Values)
}

func TestHistogramBins(t *testing.T) {
	assert.Equal(t, 3, histogramBins([]float64{1, 2, 2, 3}))
	assert.Equal(t, defaultHistogramBins, histogramBins(nil))

	wide := make([]float64, 100)
	for i := range wide {
		wide[i] = float64(i)
	}
	assert.Equal(t, maxHistogramBins, histogramBins(wide))
}
