package ports

import (
	"context"

	"datascope/domain/analysis"
)

// NarrativeRequest carries the computed statistics a narrative is built from
type NarrativeRequest struct {
	Summary         analysis.Summary
	DescribeText    string
	CorrelationText string
}

// NarrativeProvider produces a short best-effort analysis paragraph from
// computed statistics. It is an optional capability: callers consult
// Available before issuing requests. Generate never returns an error; any
// internal failure (missing credentials, network, malformed response)
// resolves to ok == false, distinct from produced text.
type NarrativeProvider interface {
	Available() bool
	Generate(ctx context.Context, req NarrativeRequest) (text string, ok bool)
}
