// Package report assembles the final HTML report from analyzer outputs,
// the optional narrative, and the chart artifacts on disk.
package report

import (
	"bytes"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"datascope/domain/analysis"
	"datascope/domain/report"
	"datascope/internal"
	"datascope/internal/errors"
)

const FileName = "report.html"

// Input carries everything one report needs. The page is a pure function
// of it: identical inputs produce identical bytes, so there is no
// timestamp or other run state in the markup.
type Input struct {
	Title       string
	Summary     analysis.Summary
	Describe    analysis.DescribeTable
	Categorical []analysis.CategoricalSummary
	Correlation analysis.CorrelationMatrix
	Narrative   string
	Artifacts   []report.ChartArtifact
}

// Assembler writes report.html into its output directory. Chart artifacts
// are embedded by file name, so the directory stays relocatable as a unit.
type Assembler struct {
	outDir string
	log    *internal.Logger
}

func NewAssembler(outDir string, logger *internal.Logger) *Assembler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Assembler{outDir: outDir, log: logger}
}

// Assemble filters the artifact list down to regular files living directly
// in the output directory, renders the page, and writes it. Artifacts that
// moved or never materialized are dropped, not failed on.
func (a *Assembler) Assemble(in Input) (*report.Report, error) {
	kept := a.filterArtifacts(in.Artifacts)

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, buildPage(in, kept)); err != nil {
		return nil, errors.ReportWrite(err)
	}
	if err := os.MkdirAll(a.outDir, 0o755); err != nil {
		return nil, errors.ReportWrite(err)
	}
	path := filepath.Join(a.outDir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, errors.ReportWrite(err)
	}
	a.log.Info("report written: %s", path)

	return &report.Report{
		Title:     in.Title,
		Narrative: in.Narrative,
		Artifacts: kept,
		Path:      path,
	}, nil
}

func (a *Assembler) filterArtifacts(arts []report.ChartArtifact) []report.ChartArtifact {
	outAbs, err := filepath.Abs(a.outDir)
	if err != nil {
		outAbs = filepath.Clean(a.outDir)
	}
	kept := make([]report.ChartArtifact, 0, len(arts))
	for _, art := range arts {
		pathAbs, err := filepath.Abs(art.Path)
		if err != nil {
			continue
		}
		if filepath.Dir(pathAbs) != outAbs {
			a.log.Debug("artifact outside output directory, skipped: %s", art.Path)
			continue
		}
		info, err := os.Stat(pathAbs)
		if err != nil || !info.Mode().IsRegular() {
			a.log.Debug("artifact not on disk, skipped: %s", art.Path)
			continue
		}
		kept = append(kept, art)
	}
	return kept
}

type pageData struct {
	Title        string
	Summary      analysis.Summary
	MissingRows  []missingRow
	TotalMissing int
	Describe     []describeRow
	Categorical  []categoricalRow
	Correlation  *correlationTable
	Narrative    template.HTML
	Charts       []chartView
}

type missingRow struct {
	Column string
	Count  int
}

type describeRow struct {
	Column string
	Count  string
	Mean   string
	Std    string
	Min    string
	Q25    string
	Median string
	Q75    string
	Max    string
}

type categoricalRow struct {
	Column       string
	UniqueCount  int
	MostFrequent string
	MissingCount int
}

type correlationTable struct {
	Columns []string
	Rows    []correlationRow
}

type correlationRow struct {
	Name  string
	Cells []string
}

type chartView struct {
	Src   string
	Title string
}

func buildPage(in Input, kept []report.ChartArtifact) pageData {
	data := pageData{
		Title:     in.Title,
		Summary:   in.Summary,
		Narrative: narrativeHTML(in.Narrative),
	}

	for _, col := range in.Summary.Columns {
		n := in.Summary.MissingValues[col]
		data.MissingRows = append(data.MissingRows, missingRow{Column: col, Count: n})
		data.TotalMissing += n
	}

	for _, d := range in.Describe.Rows {
		data.Describe = append(data.Describe, describeRow{
			Column: d.Column,
			Count:  strconv.Itoa(d.Count),
			Mean:   fmtStat(d.Mean),
			Std:    fmtStat(d.Std),
			Min:    fmtStat(d.Min),
			Q25:    fmtStat(d.Q25),
			Median: fmtStat(d.Median),
			Q75:    fmtStat(d.Q75),
			Max:    fmtStat(d.Max),
		})
	}

	for _, c := range in.Categorical {
		top := c.MostFrequent
		if !c.HasMostFrequent {
			top = "-"
		}
		data.Categorical = append(data.Categorical, categoricalRow{
			Column:       c.Column,
			UniqueCount:  c.UniqueCount,
			MostFrequent: top,
			MissingCount: c.MissingCount,
		})
	}

	if !in.Correlation.Empty() {
		table := &correlationTable{Columns: in.Correlation.Columns}
		for i, name := range in.Correlation.Columns {
			row := correlationRow{Name: name}
			for j := range in.Correlation.Columns {
				row.Cells = append(row.Cells, fmtCorr(in.Correlation.Values[i][j]))
			}
			table.Rows = append(table.Rows, row)
		}
		data.Correlation = table
	}

	for _, art := range kept {
		data.Charts = append(data.Charts, chartView{
			Src:   filepath.Base(art.Path),
			Title: art.Title,
		})
	}
	return data
}

// narrativeHTML escapes each narrative line and joins them with <br> so
// provider text renders with its paragraph breaks but never as markup.
func narrativeHTML(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	escaped := make([]string, len(lines))
	for i, line := range lines {
		escaped[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(escaped, "<br>\n"))
}

func fmtStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func fmtCorr(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

var pageTmpl = template.Must(template.New("report").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: 'Segoe UI', Helvetica, Arial, sans-serif; margin: 0; background: #f5f6fa; color: #2d3436; }
  header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #fff; padding: 32px 40px; }
  header h1 { margin: 0 0 6px 0; font-size: 28px; }
  header .meta { opacity: 0.85; font-size: 14px; }
  main { max-width: 1100px; margin: 0 auto; padding: 24px 40px 48px; }
  section { background: #fff; border-radius: 8px; padding: 20px 24px; margin-top: 24px; box-shadow: 0 1px 4px rgba(0,0,0,0.08); }
  h2 { margin-top: 0; font-size: 20px; color: #4a4a68; border-bottom: 2px solid #667eea; padding-bottom: 8px; }
  .cards { display: flex; flex-wrap: wrap; gap: 16px; }
  .card { flex: 1 1 140px; background: #f0f2ff; border-radius: 6px; padding: 14px; text-align: center; }
  .card .num { font-size: 24px; font-weight: 600; color: #667eea; }
  .card .label { font-size: 13px; color: #666; margin-top: 4px; }
  table { border-collapse: collapse; width: 100%; font-size: 14px; }
  th, td { border: 1px solid #e0e0e0; padding: 6px 10px; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  th { background: #f0f2ff; }
  .chips span { display: inline-block; background: #eef; border-radius: 12px; padding: 3px 10px; margin: 2px; font-size: 13px; }
  figure { margin: 24px 0; text-align: center; }
  figure img { max-width: 100%; border: 1px solid #e0e0e0; border-radius: 4px; }
  figcaption { font-size: 13px; color: #666; margin-top: 6px; }
  .narrative { line-height: 1.6; }
  footer { text-align: center; color: #999; font-size: 13px; padding: 16px; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.Summary.RowCount}} rows &times; {{.Summary.ColumnCount}} columns</div>
</header>
<main>
  <section>
    <h2>Overview</h2>
    <div class="cards">
      <div class="card"><div class="num">{{.Summary.RowCount}}</div><div class="label">rows</div></div>
      <div class="card"><div class="num">{{.Summary.ColumnCount}}</div><div class="label">columns</div></div>
      <div class="card"><div class="num">{{len .Summary.NumericColumns}}</div><div class="label">numeric</div></div>
      <div class="card"><div class="num">{{len .Summary.CategoricalColumns}}</div><div class="label">categorical</div></div>
      <div class="card"><div class="num">{{.TotalMissing}}</div><div class="label">missing cells</div></div>
      <div class="card"><div class="num">{{printf "%.2f" .Summary.MemoryMB}}</div><div class="label">MB est.</div></div>
    </div>
    {{if .Summary.NumericColumns}}<p class="chips">Numeric: {{range .Summary.NumericColumns}}<span>{{.}}</span>{{end}}</p>{{end}}
    {{if .Summary.CategoricalColumns}}<p class="chips">Categorical: {{range .Summary.CategoricalColumns}}<span>{{.}}</span>{{end}}</p>{{end}}
  </section>

  {{if .Narrative}}
  <section>
    <h2>Insights</h2>
    <p class="narrative">{{.Narrative}}</p>
  </section>
  {{end}}

  {{if .Describe}}
  <section>
    <h2>Numeric Columns</h2>
    <table>
      <tr><th>column</th><th>count</th><th>mean</th><th>std</th><th>min</th><th>25%</th><th>50%</th><th>75%</th><th>max</th></tr>
      {{range .Describe}}<tr><td>{{.Column}}</td><td>{{.Count}}</td><td>{{.Mean}}</td><td>{{.Std}}</td><td>{{.Min}}</td><td>{{.Q25}}</td><td>{{.Median}}</td><td>{{.Q75}}</td><td>{{.Max}}</td></tr>
      {{end}}
    </table>
  </section>
  {{end}}

  {{if .Categorical}}
  <section>
    <h2>Categorical Columns</h2>
    <table>
      <tr><th>column</th><th>unique</th><th>most frequent</th><th>missing</th></tr>
      {{range .Categorical}}<tr><td>{{.Column}}</td><td>{{.UniqueCount}}</td><td>{{.MostFrequent}}</td><td>{{.MissingCount}}</td></tr>
      {{end}}
    </table>
  </section>
  {{end}}

  {{if .Correlation}}
  <section>
    <h2>Correlations</h2>
    <table>
      <tr><th></th>{{range .Correlation.Columns}}<th>{{.}}</th>{{end}}</tr>
      {{range .Correlation.Rows}}<tr><td>{{.Name}}</td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
      {{end}}
    </table>
  </section>
  {{end}}

  {{if .MissingRows}}
  <section>
    <h2>Missing Values</h2>
    <table>
      <tr><th>column</th><th>missing</th></tr>
      {{range .MissingRows}}<tr><td>{{.Column}}</td><td>{{.Count}}</td></tr>
      {{end}}
    </table>
  </section>
  {{end}}

  {{if .Charts}}
  <section>
    <h2>Charts</h2>
    {{range .Charts}}<figure><img src="{{.Src}}" alt="{{.Title}}"><figcaption>{{.Src}}</figcaption></figure>
    {{end}}
  </section>
  {{end}}
</main>
<footer>datascope report</footer>
</body>
</html>
`
