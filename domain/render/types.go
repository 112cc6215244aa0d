package render

import "image/color"

// DefaultDPI is the raster resolution used when Config leaves DPI unset.
const DefaultDPI = 150

// Config is the immutable rendering configuration handed to the chart
// layer at construction. Passing it explicitly keeps output reproducible
// regardless of call order or concurrent use.
type Config struct {
	DPI     int
	Palette []color.Color
}

// DefaultConfig returns the stock rendering setup
func DefaultConfig() Config {
	return Config{
		DPI: DefaultDPI,
		Palette: []color.Color{
			color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff},
			color.RGBA{R: 0x76, G: 0x4b, B: 0xa2, A: 0xff},
			color.RGBA{R: 0xf0, G: 0x93, B: 0xfb, A: 0xff},
			color.RGBA{R: 0x4f, G: 0xac, B: 0xfe, A: 0xff},
			color.RGBA{R: 0x00, G: 0xf2, B: 0xfe, A: 0xff},
			color.RGBA{R: 0x43, G: 0xe9, B: 0x7b, A: 0xff},
		},
	}
}

// Color returns the palette entry for index i, cycling past the end
func (c Config) Color(i int) color.Color {
	if len(c.Palette) == 0 {
		return color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}
	}
	return c.Palette[i%len(c.Palette)]
}

// HeatmapSpec describes an annotated correlation heatmap. Cells is
// row-major with Cells[i][j] pairing Columns[i] and Columns[j]; values
// outside [-1, 1] are clamped by the renderer, NaN cells drawn neutral.
type HeatmapSpec struct {
	Title   string
	Columns []string
	Cells   [][]float64
}

// HistogramSpec describes a single-column distribution plot
type HistogramSpec struct {
	Title  string
	XLabel string
	Values []float64
	Bins   int
}

// BarSpec describes a labeled bar chart; labels pair with values by index
type BarSpec struct {
	Title      string
	AxisLabel  string
	Labels     []string
	Values     []float64
	Horizontal bool
}

// ScatterSpec describes a two-column scatter plot of complete pairs
type ScatterSpec struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// BoxSpec describes a single-column box plot
type BoxSpec struct {
	Title  string
	Label  string
	Values []float64
}

// DashboardSpec describes the 2x2 composite panel. A nil Heatmap leaves
// the first panel blank; a nil TopValues shows Placeholder text instead.
type DashboardSpec struct {
	Title       string
	Heatmap     *HeatmapSpec
	Histograms  []HistogramSpec
	TopValues   *BarSpec
	Placeholder string
}
