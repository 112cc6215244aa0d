package charts

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"datascope/domain/render"
	"datascope/domain/report"
	"datascope/internal"
	"datascope/internal/analysis"
	"datascope/internal/errors"
	"datascope/ports"

	"golang.org/x/sync/semaphore"
)

// Catalogue policy for the default pipeline run.
const (
	maxDistributionColumns = 6
	maxValueCountCharts    = 5
	defaultBarTopN         = 15
	dashboardTopN          = 10
	dashboardBins          = 25
	maxHistogramBins       = 40
	defaultHistogramBins   = 20
)

// Options tunes catalogue generation.
type Options struct {
	// Workers bounds concurrent render jobs; values below 2 render
	// sequentially. Artifact order is catalogue order either way.
	Workers int
}

// Generator produces the chart artifact catalogue for one analyzed dataset.
// Every chart kind has an applicability precondition; an unmet precondition
// yields no artifact and no error. Render configuration is fixed at
// construction.
type Generator struct {
	analyzer *analysis.Analyzer
	renderer ports.ChartRenderer
	outDir   string
	cfg      render.Config
	opts     Options
	log      *internal.Logger
}

// NewGenerator wires a generator to a non-nil renderer. Callers treat the
// renderer as an optional capability and skip construction when absent.
func NewGenerator(a *analysis.Analyzer, r ports.ChartRenderer, outDir string, cfg render.Config, opts Options, logger *internal.Logger) *Generator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Generator{
		analyzer: a,
		renderer: r,
		outDir:   outDir,
		cfg:      cfg,
		opts:     opts,
		log:      logger,
	}
}

type chartJob struct {
	name string
	run  func() (*report.ChartArtifact, error)
}

// GenerateAll runs the default catalogue: correlation heatmap, dashboard
// and first-two-numeric scatter when at least two numeric columns exist;
// distribution and box plots for the first six numeric columns; value-count
// bars for the first five categorical-then-numeric columns; a missing-values
// bar last. The returned order is the report display order. Each job runs
// in its own failure boundary: a failed render is logged and skipped, never
// cancelling the remaining charts.
func (g *Generator) GenerateAll(ctx context.Context) []report.ChartArtifact {
	jobs := g.catalogue()
	results := make([]*report.ChartArtifact, len(jobs))

	if g.opts.Workers < 2 {
		for i, job := range jobs {
			if ctx.Err() != nil {
				break
			}
			results[i] = g.runJob(job)
		}
	} else {
		sem := semaphore.NewWeighted(int64(g.opts.Workers))
		var wg sync.WaitGroup
		for i, job := range jobs {
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			wg.Add(1)
			go func(i int, job chartJob) {
				defer wg.Done()
				defer sem.Release(1)
				results[i] = g.runJob(job)
			}(i, job)
		}
		wg.Wait()
	}

	artifacts := make([]report.ChartArtifact, 0, len(results))
	for _, a := range results {
		if a != nil {
			artifacts = append(artifacts, *a)
		}
	}
	return artifacts
}

func (g *Generator) runJob(job chartJob) *report.ChartArtifact {
	art, err := job.run()
	if err != nil {
		g.log.Warn("chart %s failed, continuing: %v", job.name, err)
		return nil
	}
	if art != nil {
		g.log.Info("chart written: %s", art.Path)
	}
	return art
}

func (g *Generator) catalogue() []chartJob {
	schema := g.analyzer.Schema()
	var jobs []chartJob

	if len(schema.Numeric) >= 2 {
		jobs = append(jobs,
			chartJob{"correlation heatmap", g.CorrelationHeatmap},
			chartJob{"dashboard", g.Dashboard},
		)
		x, y := schema.Numeric[0], schema.Numeric[1]
		jobs = append(jobs, chartJob{
			name: fmt.Sprintf("scatter %s vs %s", x, y),
			run:  func() (*report.ChartArtifact, error) { return g.Scatter(x, y) },
		})
	}

	for _, col := range firstN(schema.Numeric, maxDistributionColumns) {
		col := col
		jobs = append(jobs,
			chartJob{"distribution " + col, func() (*report.ChartArtifact, error) { return g.Distribution(col) }},
			chartJob{"box " + col, func() (*report.ChartArtifact, error) { return g.Box(col) }},
		)
	}

	combined := make([]string, 0, len(schema.Categorical)+len(schema.Numeric))
	combined = append(combined, schema.Categorical...)
	combined = append(combined, schema.Numeric...)
	for _, col := range firstN(combined, maxValueCountCharts) {
		col := col
		jobs = append(jobs, chartJob{
			name: "value counts " + col,
			run:  func() (*report.ChartArtifact, error) { return g.ValueCountsBar(col, defaultBarTopN) },
		})
	}

	jobs = append(jobs, chartJob{"missing values", g.MissingValues})
	return jobs
}

// CorrelationHeatmap renders the annotated pairwise correlation matrix.
// Requires at least two numeric columns.
func (g *Generator) CorrelationHeatmap() (*report.ChartArtifact, error) {
	m := g.analyzer.CorrelationMatrix()
	if m.Empty() {
		return nil, nil
	}
	title := "Correlation Matrix"
	png, err := g.renderer.Heatmap(render.HeatmapSpec{
		Title:   title,
		Columns: m.Columns,
		Cells:   m.Values,
	})
	if err != nil {
		return nil, errors.RenderFailed("correlation heatmap", err)
	}
	path, err := g.write("correlation_heatmap.png", png)
	if err != nil {
		return nil, errors.RenderFailed("correlation heatmap", err)
	}
	return &report.ChartArtifact{
		Kind:    report.KindCorrelationHeatmap,
		Columns: m.Columns,
		Path:    path,
		Title:   title,
	}, nil
}

// Distribution renders a histogram for one numeric column with at least one
// non-missing value. Bin count is min(40, distinct values), defaulting to 20
// when the distinct count is unavailable.
func (g *Generator) Distribution(column string) (*report.ChartArtifact, error) {
	col, ok := g.analyzer.Dataset().Column(column)
	if !ok || !col.IsNumeric() {
		return nil, nil
	}
	values := col.NonMissing()
	if len(values) == 0 {
		return nil, nil
	}
	title := "Distribution: " + column
	png, err := g.renderer.Histogram(render.HistogramSpec{
		Title:  title,
		XLabel: column,
		Values: values,
		Bins:   histogramBins(values),
	})
	if err != nil {
		return nil, errors.RenderFailed("distribution "+column, err)
	}
	path, err := g.write("distribution_"+sanitizeName(column)+".png", png)
	if err != nil {
		return nil, errors.RenderFailed("distribution "+column, err)
	}
	return &report.ChartArtifact{
		Kind:    report.KindDistribution,
		Columns: []string{column},
		Path:    path,
		Title:   title,
	}, nil
}

// ValueCountsBar renders the top values of one existing column as
// horizontal bars, largest first. Produces nothing when the column has no
// countable values.
func (g *Generator) ValueCountsBar(column string, topN int) (*report.ChartArtifact, error) {
	if !g.analyzer.Dataset().HasColumn(column) {
		return nil, nil
	}
	if topN <= 0 {
		topN = defaultBarTopN
	}
	vc, err := g.analyzer.ValueCounts(column, topN)
	if err != nil {
		return nil, err
	}
	if len(vc.Entries) == 0 {
		return nil, nil
	}

	labels := make([]string, len(vc.Entries))
	values := make([]float64, len(vc.Entries))
	for i, e := range vc.Entries {
		labels[i] = e.Value
		values[i] = float64(e.Count)
	}
	title := fmt.Sprintf("Top Values: %s", column)
	png, err := g.renderer.Bar(render.BarSpec{
		Title:      title,
		AxisLabel:  "count",
		Labels:     labels,
		Values:     values,
		Horizontal: true,
	})
	if err != nil {
		return nil, errors.RenderFailed("value counts "+column, err)
	}
	path, err := g.write("value_counts_"+sanitizeName(column)+".png", png)
	if err != nil {
		return nil, errors.RenderFailed("value counts "+column, err)
	}
	return &report.ChartArtifact{
		Kind:    report.KindValueCounts,
		Columns: []string{column},
		Path:    path,
		Title:   title,
	}, nil
}

// Scatter renders complete (x, y) pairs for two numeric columns. Requires
// at least two complete pairs after dropping rows missing either value.
func (g *Generator) Scatter(xCol, yCol string) (*report.ChartArtifact, error) {
	cx, okx := g.analyzer.Dataset().Column(xCol)
	cy, oky := g.analyzer.Dataset().Column(yCol)
	if !okx || !oky || !cx.IsNumeric() || !cy.IsNumeric() {
		return nil, nil
	}
	xs, ys := completePairs(cx.Floats, cy.Floats)
	if len(xs) < 2 {
		return nil, nil
	}
	title := fmt.Sprintf("%s vs %s", xCol, yCol)
	png, err := g.renderer.Scatter(render.ScatterSpec{
		Title:  title,
		XLabel: xCol,
		YLabel: yCol,
		X:      xs,
		Y:      ys,
	})
	if err != nil {
		return nil, errors.RenderFailed("scatter "+title, err)
	}
	name := fmt.Sprintf("scatter_%s_vs_%s.png", sanitizeName(xCol), sanitizeName(yCol))
	path, err := g.write(name, png)
	if err != nil {
		return nil, errors.RenderFailed("scatter "+title, err)
	}
	return &report.ChartArtifact{
		Kind:    report.KindScatter,
		Columns: []string{xCol, yCol},
		Path:    path,
		Title:   title,
	}, nil
}

// Box renders a single-column box summary for a numeric column with at
// least one non-missing value.
func (g *Generator) Box(column string) (*report.ChartArtifact, error) {
	col, ok := g.analyzer.Dataset().Column(column)
	if !ok || !col.IsNumeric() {
		return nil, nil
	}
	values := col.NonMissing()
	if len(values) == 0 {
		return nil, nil
	}
	title := "Box Plot: " + column
	png, err := g.renderer.Box(render.BoxSpec{
		Title:  title,
		Label:  column,
		Values: values,
	})
	if err != nil {
		return nil, errors.RenderFailed("box "+column, err)
	}
	path, err := g.write("box_"+sanitizeName(column)+".png", png)
	if err != nil {
		return nil, errors.RenderFailed("box "+column, err)
	}
	return &report.ChartArtifact{
		Kind:    report.KindBox,
		Columns: []string{column},
		Path:    path,
		Title:   title,
	}, nil
}

// MissingValues renders one bar per column that has missing cells,
// ascending by count. Produces nothing when the dataset is complete.
func (g *Generator) MissingValues() (*report.ChartArtifact, error) {
	s := g.analyzer.Summary()
	type gap struct {
		name  string
		count int
	}
	var gaps []gap
	for _, name := range s.Columns {
		if n := s.MissingValues[name]; n > 0 {
			gaps = append(gaps, gap{name, n})
		}
	}
	if len(gaps) == 0 {
		return nil, nil
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].count < gaps[j].count })

	labels := make([]string, len(gaps))
	values := make([]float64, len(gaps))
	columns := make([]string, len(gaps))
	for i, gp := range gaps {
		labels[i] = gp.name
		values[i] = float64(gp.count)
		columns[i] = gp.name
	}
	title := "Missing Values by Column"
	png, err := g.renderer.Bar(render.BarSpec{
		Title:      title,
		AxisLabel:  "missing cells",
		Labels:     labels,
		Values:     values,
		Horizontal: true,
	})
	if err != nil {
		return nil, errors.RenderFailed("missing values", err)
	}
	path, err := g.write("missing_values.png", png)
	if err != nil {
		return nil, errors.RenderFailed("missing values", err)
	}
	return &report.ChartArtifact{
		Kind:    report.KindMissingValues,
		Columns: columns,
		Path:    path,
		Title:   title,
	}, nil
}

// Dashboard renders the 2x2 composite: correlation matrix top-left when at
// least two numeric columns exist, distributions of the first two numeric
// columns, and the top values of the first categorical column or a
// placeholder when no categorical columns exist. Best-effort: panels
// degrade individually.
func (g *Generator) Dashboard() (*report.ChartArtifact, error) {
	schema := g.analyzer.Schema()
	spec := render.DashboardSpec{Title: "Summary Dashboard"}

	if len(schema.Numeric) >= 2 {
		if m := g.analyzer.CorrelationMatrix(); !m.Empty() {
			spec.Heatmap = &render.HeatmapSpec{
				Title:   "Correlation",
				Columns: m.Columns,
				Cells:   m.Values,
			}
		}
	}

	for _, col := range firstN(schema.Numeric, 2) {
		c, _ := g.analyzer.Dataset().Column(col)
		values := c.NonMissing()
		if len(values) == 0 {
			continue
		}
		spec.Histograms = append(spec.Histograms, render.HistogramSpec{
			Title:  "Distribution: " + col,
			XLabel: col,
			Values: values,
			Bins:   dashboardBins,
		})
	}

	if len(schema.Categorical) > 0 {
		col := schema.Categorical[0]
		vc, err := g.analyzer.ValueCounts(col, dashboardTopN)
		if err == nil {
			labels := make([]string, len(vc.Entries))
			values := make([]float64, len(vc.Entries))
			for i, e := range vc.Entries {
				labels[i] = e.Value
				values[i] = float64(e.Count)
			}
			spec.TopValues = &render.BarSpec{
				Title:      "Top Values: " + col,
				AxisLabel:  "count",
				Labels:     labels,
				Values:     values,
				Horizontal: true,
			}
		}
	} else {
		spec.Placeholder = "No categorical columns"
	}

	png, err := g.renderer.Dashboard(spec)
	if err != nil {
		return nil, errors.RenderFailed("dashboard", err)
	}
	path, err := g.write("dashboard.png", png)
	if err != nil {
		return nil, errors.RenderFailed("dashboard", err)
	}
	return &report.ChartArtifact{
		Kind:  report.KindDashboard,
		Path:  path,
		Title: spec.Title,
	}, nil
}

// write creates the output directory if needed and stores one encoded chart.
func (g *Generator) write(name string, png []byte) (string, error) {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(g.outDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// sanitizeName maps every character outside [A-Za-z0-9._-] to an
// underscore, one for one.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// histogramBins picks min(40, distinct values), defaulting to 20 when no
// distinct count is available.
func histogramBins(values []float64) int {
	distinct := make(map[float64]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	n := len(distinct)
	if n == 0 {
		n = defaultHistogramBins
	}
	if n > maxHistogramBins {
		n = maxHistogramBins
	}
	return n
}

// completePairs keeps rows where both values are present.
func completePairs(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
