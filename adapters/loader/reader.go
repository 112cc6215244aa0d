// Package loader reads tabular files from disk into datasets.
package loader

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"datascope/domain/dataset"
	"datascope/internal"
	"datascope/internal/errors"
	"datascope/ports"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// DataReader loads CSV, TSV, Excel and JSON files, dispatching on the file
// extension. Unknown extensions get one CSV parse attempt before being
// rejected as unsupported.
type DataReader struct {
	log *internal.Logger
}

var _ ports.DatasetLoader = (*DataReader)(nil)

func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{log: logger}
}

func (r *DataReader) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.DataAccess("file not found: "+path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	r.log.Info("loading %s", path)

	switch ext {
	case ".csv":
		return r.readDelimited(path, ',')
	case ".tsv":
		return r.readDelimited(path, '\t')
	case ".xlsx", ".xlsm":
		return r.readExcel(path)
	case ".json":
		return r.readJSON(path)
	case ".xls":
		// Legacy binary Excel needs a separate parser we do not carry.
		return nil, errors.UnsupportedFormat(ext)
	default:
		ds, err := r.readDelimited(path, ',')
		if err != nil {
			r.log.Debug("csv fallback failed for %s: %v", path, err)
			return nil, errors.UnsupportedFormat(ext)
		}
		return ds, nil
	}
}

func (r *DataReader) readDelimited(path string, comma rune) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataAccess("opening "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DataAccess("parsing "+path, err)
	}
	ds, err := dataset.FromRecords(records)
	if err != nil {
		return nil, errors.DataAccess("reading "+path, err)
	}
	return ds, nil
}

func (r *DataReader) readExcel(path string) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.DataAccess("opening "+path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DataAccess("no sheets in "+path, nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.DataAccess("reading sheet "+sheets[0], err)
	}
	ds, err := dataset.FromRecords(rows)
	if err != nil {
		return nil, errors.DataAccess("reading "+path, err)
	}
	return ds, nil
}

// readJSON accepts an array of flat objects. Column order follows gota's
// record layout, which sorts keys alphabetically.
func (r *DataReader) readJSON(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataAccess("opening "+path, err)
	}
	defer f.Close()

	df := dataframe.ReadJSON(f)
	if df.Err != nil {
		return nil, errors.DataAccess("parsing "+path, df.Err)
	}
	ds, err := dataset.FromRecords(df.Records())
	if err != nil {
		return nil, errors.DataAccess("reading "+path, err)
	}
	return ds, nil
}
