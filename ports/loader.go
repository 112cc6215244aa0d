package ports

import (
	"context"

	"datascope/domain/dataset"
)

// DatasetLoader resolves a file path into an in-memory Dataset.
// Implementations own format dispatch by extension; every load failure is
// fatal to the run (DATA_ACCESS or UNSUPPORTED_FORMAT error codes).
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*dataset.Dataset, error)
}
