// Package app wires loading, analysis, rendering and report assembly into
// one pipeline run.
package app

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"datascope/domain/analysis"
	"datascope/domain/core"
	"datascope/domain/dataset"
	"datascope/domain/render"
	"datascope/domain/report"
	"datascope/internal"
	statsengine "datascope/internal/analysis"
	"datascope/internal/charts"
	"datascope/internal/config"
	"datascope/internal/errors"
	reportgen "datascope/internal/report"
	"datascope/ports"
)

const sampleFileName = "data_sample.csv"

// Pipeline runs the full analysis flow. The narrative provider and the
// renderer are optional capabilities; a nil value or an unavailable
// provider degrades the run instead of failing it.
type Pipeline struct {
	loader    ports.DatasetLoader
	narrative ports.NarrativeProvider
	renderer  ports.ChartRenderer
	cfg       *config.Config
	log       *internal.Logger
}

// RunRequest defines one pipeline invocation.
type RunRequest struct {
	InputPath string
	OutputDir string // overrides config when set
}

// RunResult carries everything the caller needs to present a run.
type RunResult struct {
	RunID        core.RunID
	Dataset      *dataset.Dataset
	Summary      analysis.Summary
	Describe     analysis.DescribeTable
	Categorical  []analysis.CategoricalSummary
	Correlation  analysis.CorrelationMatrix
	ValueCounts  []analysis.ValueCounts
	Artifacts    []report.ChartArtifact
	Narrative    string
	HasNarrative bool
	Report       *report.Report
	SamplePath   string
	Duration     time.Duration
}

func NewPipeline(
	loader ports.DatasetLoader,
	narrative ports.NarrativeProvider,
	renderer ports.ChartRenderer,
	cfg *config.Config,
	logger *internal.Logger,
) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{
		loader:    loader,
		narrative: narrative,
		renderer:  renderer,
		cfg:       cfg,
		log:       logger,
	}
}

// Run loads the input, analyzes it, renders the chart catalogue, asks the
// narrative provider for insights, and assembles the report. Loading and
// report assembly failures abort the run; charts, narrative and the data
// sample are best-effort.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	startTime := time.Now()
	runID := core.NewRunID()
	p.log.Info("run %s: analyzing %s", runID, req.InputPath)

	ds, err := p.loader.Load(ctx, req.InputPath)
	if err != nil {
		return nil, err
	}
	p.log.Info("loaded %d rows, %d columns", ds.RowCount(), ds.ColumnCount())

	analyzer := statsengine.NewAnalyzer(ds)
	summary := analyzer.Summary()
	describe := analyzer.DescribeNumeric()
	categorical := analyzer.DescribeCategorical()
	correlation := analyzer.CorrelationMatrix()

	outDir := req.OutputDir
	if outDir == "" {
		outDir = p.cfg.Output.Dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.DataAccess("creating output directory "+outDir, err)
	}

	var artifacts []report.ChartArtifact
	if p.renderer != nil && p.cfg.Charts.Enabled {
		gen := charts.NewGenerator(
			analyzer,
			p.renderer,
			outDir,
			render.Config{DPI: p.cfg.Charts.DPI, Palette: render.DefaultConfig().Palette},
			charts.Options{Workers: p.cfg.Charts.Workers},
			p.log,
		)
		artifacts = gen.GenerateAll(ctx)
		p.log.Info("generated %d charts", len(artifacts))
	} else {
		p.log.Info("chart rendering disabled, skipping")
	}

	var narrative string
	var hasNarrative bool
	if p.narrative != nil && p.cfg.AI.Enabled && p.narrative.Available() {
		narrative, hasNarrative = p.narrative.Generate(ctx, ports.NarrativeRequest{
			Summary:         summary,
			DescribeText:    statsengine.FormatDescribe(describe),
			CorrelationText: statsengine.FormatCorrelation(correlation),
		})
	} else {
		p.log.Info("narrative provider unavailable, skipping")
	}

	samplePath, err := p.writeSample(ds, outDir)
	if err != nil {
		p.log.Warn("data sample not written: %v", err)
		samplePath = ""
	}

	assembler := reportgen.NewAssembler(outDir, p.log)
	rep, err := assembler.Assemble(reportgen.Input{
		Title:       "Analysis Report: " + filepath.Base(req.InputPath),
		Summary:     summary,
		Describe:    describe,
		Categorical: categorical,
		Correlation: correlation,
		Narrative:   narrative,
		Artifacts:   artifacts,
	})
	if err != nil {
		return nil, err
	}

	var valueCounts []analysis.ValueCounts
	for _, col := range analyzer.Schema().Categorical {
		if vc, err := analyzer.ValueCounts(col, statsengine.DefaultTopN); err == nil {
			valueCounts = append(valueCounts, vc)
		}
	}

	duration := time.Since(startTime)
	p.log.Info("run %s complete in %s", runID, duration.Round(time.Millisecond))

	return &RunResult{
		RunID:        runID,
		Dataset:      ds,
		Summary:      summary,
		Describe:     describe,
		Categorical:  categorical,
		Correlation:  correlation,
		ValueCounts:  valueCounts,
		Artifacts:    rep.Artifacts,
		Narrative:    narrative,
		HasNarrative: hasNarrative,
		Report:       rep,
		SamplePath:   samplePath,
		Duration:     duration,
	}, nil
}

// writeSample stores the first SampleRows rows next to the report.
func (p *Pipeline) writeSample(ds *dataset.Dataset, outDir string) (string, error) {
	path := filepath.Join(outDir, sampleFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := csv.NewWriter(f).WriteAll(ds.Head(p.cfg.Output.SampleRows)); err != nil {
		return "", err
	}
	return path, nil
}
