package ports

import "datascope/domain/render"

// ChartRenderer rasterizes chart specifications into encoded PNG bytes.
// It is an optional capability: a pipeline constructed without a renderer
// produces no chart artifacts. Implementations must be safe for concurrent
// use, as catalogue generation may render charts in parallel.
type ChartRenderer interface {
	Heatmap(spec render.HeatmapSpec) ([]byte, error)
	Histogram(spec render.HistogramSpec) ([]byte, error)
	Bar(spec render.BarSpec) ([]byte, error)
	Scatter(spec render.ScatterSpec) ([]byte, error)
	Box(spec render.BoxSpec) ([]byte, error)
	Dashboard(spec render.DashboardSpec) ([]byte, error)
}
