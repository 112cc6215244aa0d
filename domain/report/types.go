package report

// Kind enumerates the chart catalogue
type Kind string

const (
	KindCorrelationHeatmap Kind = "correlation_heatmap"
	KindDistribution       Kind = "distribution"
	KindValueCounts        Kind = "value_counts"
	KindScatter            Kind = "scatter"
	KindBox                Kind = "box"
	KindMissingValues      Kind = "missing_values"
	KindDashboard          Kind = "dashboard"
)

// ChartArtifact is one generated visual output file plus its metadata.
// Never mutated after creation.
type ChartArtifact struct {
	Kind    Kind     `json:"kind"`
	Columns []string `json:"columns,omitempty"`
	Path    string   `json:"path"`
	Title   string   `json:"title"`
}

// Report describes the assembled HTML document. Artifacts lists only the
// chart files that physically existed inside the output directory at
// assembly time, in display order.
type Report struct {
	Title     string          `json:"title"`
	Narrative string          `json:"narrative,omitempty"`
	Artifacts []ChartArtifact `json:"artifacts"`
	Path      string          `json:"path"`
}
