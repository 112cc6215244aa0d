// Package charts renders chart specs to PNG using gonum/plot.
package charts

import (
	"bytes"
	"image/color"
	"math"
	"strconv"

	"datascope/domain/render"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Canvas sizes per chart kind. Bar charts grow with the number of bars.
const (
	heatmapWidth  = 10 * vg.Inch
	heatmapHeight = 8 * vg.Inch
	histWidth     = 9 * vg.Inch
	histHeight    = 5 * vg.Inch
	scatterWidth  = 9 * vg.Inch
	scatterHeight = 6 * vg.Inch
	boxWidth      = 8 * vg.Inch
	boxHeight     = 5 * vg.Inch
	barWidth      = 10 * vg.Inch
	dashWidth     = 14 * vg.Inch
	dashHeight    = 10 * vg.Inch
)

// PlotRenderer implements ports.ChartRenderer on gonum/plot. All methods
// build an independent plot per call, so one renderer is safe for
// concurrent use.
type PlotRenderer struct {
	cfg render.Config
}

func NewPlotRenderer(cfg render.Config) *PlotRenderer {
	return &PlotRenderer{cfg: cfg}
}

// Heatmap renders an annotated correlation matrix with the first column at
// the top, diverging palette pinned to [-1, 1], and gray undefined cells.
func (r *PlotRenderer) Heatmap(spec render.HeatmapSpec) ([]byte, error) {
	p, err := r.heatmapPlot(spec)
	if err != nil {
		return nil, err
	}
	return r.encode(p, heatmapWidth, heatmapHeight)
}

func (r *PlotRenderer) Histogram(spec render.HistogramSpec) ([]byte, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = "frequency"

	values := make(plotter.Values, len(spec.Values))
	copy(values, spec.Values)
	h, err := plotter.NewHist(values, spec.Bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = r.cfg.Color(0)
	p.Add(plotter.NewGrid(), h)

	return r.encode(p, histWidth, histHeight)
}

// Bar renders labeled bars. Horizontal bars keep the caller's order top to
// bottom, so the first label lands on the topmost bar.
func (r *PlotRenderer) Bar(spec render.BarSpec) ([]byte, error) {
	p := plot.New()
	p.Title.Text = spec.Title

	labels := spec.Labels
	values := spec.Values
	if spec.Horizontal {
		labels = reversedStrings(labels)
		values = reversedFloats(values)
	}

	if len(values) > 0 {
		bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(16))
		if err != nil {
			return nil, err
		}
		bars.Horizontal = spec.Horizontal
		bars.Color = r.cfg.Color(1)
		bars.LineStyle.Width = 0
		p.Add(bars)
	}

	if spec.Horizontal {
		p.NominalY(labels...)
		p.X.Label.Text = spec.AxisLabel
	} else {
		p.NominalX(labels...)
		p.Y.Label.Text = spec.AxisLabel
	}

	height := vg.Length(math.Max(5, 0.45*float64(len(labels))+1.5)) * vg.Inch
	if !spec.Horizontal {
		height = histHeight
	}
	return r.encode(p, barWidth, height)
}

func (r *PlotRenderer) Scatter(spec render.ScatterSpec) ([]byte, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	xys := make(plotter.XYs, len(spec.X))
	for i := range spec.X {
		xys[i].X = spec.X[i]
		xys[i].Y = spec.Y[i]
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = r.cfg.Color(3)
	s.GlyphStyle.Radius = vg.Points(2.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(plotter.NewGrid(), s)

	return r.encode(p, scatterWidth, scatterHeight)
}

func (r *PlotRenderer) Box(spec render.BoxSpec) ([]byte, error) {
	p := plot.New()
	p.Title.Text = spec.Title

	values := make(plotter.Values, len(spec.Values))
	copy(values, spec.Values)
	b, err := plotter.NewBoxPlot(vg.Points(50), 0, values)
	if err != nil {
		return nil, err
	}
	b.FillColor = r.cfg.Color(5)
	p.Add(b)
	p.NominalX(spec.Label)

	return r.encode(p, boxWidth, boxHeight)
}

// Dashboard tiles a 2x2 composite: correlation top-left, up to two
// distributions, and a top-values panel bottom-right. Missing panels stay
// blank; a placeholder message takes the bottom-right tile when set.
func (r *PlotRenderer) Dashboard(spec render.DashboardSpec) ([]byte, error) {
	plots := [][]*plot.Plot{
		{nil, nil},
		{nil, nil},
	}

	if spec.Heatmap != nil {
		hp, err := r.heatmapPlot(*spec.Heatmap)
		if err != nil {
			return nil, err
		}
		plots[0][0] = hp
	} else {
		plots[0][0] = textPanel("Not enough numeric columns")
	}

	slots := [][2]int{{0, 1}, {1, 0}}
	for i, hs := range spec.Histograms {
		if i >= len(slots) {
			break
		}
		hp := plot.New()
		hp.Title.Text = hs.Title
		hp.X.Label.Text = hs.XLabel
		values := make(plotter.Values, len(hs.Values))
		copy(values, hs.Values)
		h, err := plotter.NewHist(values, hs.Bins)
		if err != nil {
			return nil, err
		}
		h.FillColor = r.cfg.Color(i + 1)
		hp.Add(h)
		plots[slots[i][0]][slots[i][1]] = hp
	}

	switch {
	case spec.TopValues != nil:
		bp := plot.New()
		bp.Title.Text = spec.TopValues.Title
		labels := reversedStrings(spec.TopValues.Labels)
		values := reversedFloats(spec.TopValues.Values)
		if len(values) > 0 {
			bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(12))
			if err != nil {
				return nil, err
			}
			bars.Horizontal = true
			bars.Color = r.cfg.Color(4)
			bars.LineStyle.Width = 0
			bp.Add(bars)
		}
		bp.NominalY(labels...)
		bp.X.Label.Text = spec.TopValues.AxisLabel
		plots[1][1] = bp
	case spec.Placeholder != "":
		plots[1][1] = textPanel(spec.Placeholder)
	}

	img := vgimg.NewWith(vgimg.UseWH(dashWidth, dashHeight), vgimg.UseDPI(r.dpi()))
	dc := draw.New(img)
	if spec.Title != "" {
		title := plot.New()
		title.Title.Text = spec.Title
		title.HideAxes()
		// Reserve a thin strip for the composite title.
		titleH := vg.Points(28)
		title.Draw(draw.Crop(dc, 0, 0, dc.Max.Y-dc.Min.Y-titleH, 0))
		dc = draw.Crop(dc, 0, 0, 0, -titleH)
	}
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Points(14), PadY: vg.Points(14),
		PadTop: vg.Points(6), PadBottom: vg.Points(6),
		PadLeft: vg.Points(6), PadRight: vg.Points(6),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PlotRenderer) heatmapPlot(spec render.HeatmapSpec) (*plot.Plot, error) {
	n := len(spec.Columns)
	hm := plotter.NewHeatMap(&corrGrid{cells: spec.Cells}, moreland.SmoothBlueRed().Palette(256))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Add(hm)

	xticks := make([]plot.Tick, n)
	yticks := make([]plot.Tick, n)
	for i, name := range spec.Columns {
		xticks[i] = plot.Tick{Value: float64(i), Label: name}
		yticks[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)

	var xys plotter.XYs
	var texts []string
	for i, row := range spec.Cells {
		for j, v := range row {
			label := "NaN"
			if !math.IsNaN(v) {
				label = strconv.FormatFloat(v, 'f', 2, 64)
			}
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			texts = append(texts, label)
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(8)
		if v := cellValue(spec.Cells, i, n); !math.IsNaN(v) && math.Abs(v) > 0.6 {
			labels.TextStyle[i].Color = color.White
		}
	}
	p.Add(labels)
	return p, nil
}

// cellValue maps a flattened annotation index back to its matrix cell.
func cellValue(cells [][]float64, idx, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return cells[idx/n][idx%n]
}

func textPanel(msg string) *plot.Plot {
	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{msg},
	})
	if err != nil {
		return p
	}
	labels.TextStyle[0].XAlign = draw.XCenter
	labels.TextStyle[0].YAlign = draw.YCenter
	labels.TextStyle[0].Font.Size = vg.Points(14)
	p.Add(labels)
	return p
}

// corrGrid adapts a row-major matrix to plotter.GridXYZ, flipping rows so
// the matrix's first row is drawn at the top.
type corrGrid struct {
	cells [][]float64
}

func (g *corrGrid) Dims() (c, r int) {
	r = len(g.cells)
	if r > 0 {
		c = len(g.cells[0])
	}
	return c, r
}

func (g *corrGrid) Z(c, r int) float64 { return g.cells[len(g.cells)-1-r][c] }
func (g *corrGrid) X(c int) float64    { return float64(c) }
func (g *corrGrid) Y(r int) float64    { return float64(r) }

func (r *PlotRenderer) dpi() int {
	if r.cfg.DPI > 0 {
		return r.cfg.DPI
	}
	return render.DefaultDPI
}

func (r *PlotRenderer) encode(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.dpi()))
	p.Draw(draw.New(img))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reversedStrings(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func reversedFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
