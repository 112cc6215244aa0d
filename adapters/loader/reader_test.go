package loader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"datascope/internal"
	"datascope/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReader() *DataReader {
	return NewDataReader(internal.NewLogger(internal.LogLevelError, io.Discard))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "orders.csv", "region,price\nnorth,10\nsouth,20\n")

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, []string{"region", "price"}, ds.Names())
	price, ok := ds.Column("price")
	require.True(t, ok)
	assert.True(t, price.IsNumeric())
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "orders.tsv", "region\tprice\nnorth\t10\n")

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.RowCount())
	assert.Equal(t, []string{"region", "price"}, ds.Names())
}

func TestLoadHeaderOnlyCSV(t *testing.T) {
	path := writeFile(t, "empty.csv", "region,price\n")

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.RowCount())
	assert.Equal(t, 2, ds.ColumnCount())
}

func TestLoadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"region", "price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"north", 10}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"south", 20}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, []string{"region", "price"}, ds.Names())
	price, ok := ds.Column("price")
	require.True(t, ok)
	assert.True(t, price.IsNumeric())
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "orders.json",
		`[{"region":"north","price":10},{"region":"south","price":20}]`)

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.RowCount())
	// gota orders object keys alphabetically.
	assert.Equal(t, []string{"price", "region"}, ds.Names())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := testReader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeDataAccess))
}

func TestLoadLegacyExcelUnsupported(t *testing.T) {
	path := writeFile(t, "old.xls", "not really excel")

	_, err := testReader().Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))
}

func TestLoadUnknownExtensionFallsBackToCSV(t *testing.T) {
	path := writeFile(t, "orders.dat", "region,price\nnorth,10\n")

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.RowCount())
}

func TestLoadUnknownExtensionUnparseable(t *testing.T) {
	path := writeFile(t, "blob.bin", "\x00\x01\x02\"broken")

	_, err := testReader().Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))
}

func TestLoadCancelledContext(t *testing.T) {
	path := writeFile(t, "orders.csv", "a\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testReader().Load(ctx, path)
	assert.Error(t, err)
}

func TestLoadRaggedCSV(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b,c\n1,2\n4,5,6,7\n")

	ds, err := testReader().Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 2, ds.RowCount())
	c, ok := ds.Column("c")
	require.True(t, ok)
	assert.True(t, c.IsMissing(0), "short row pads with missing")
	b, ok := ds.Column("b")
	require.True(t, ok)
	assert.False(t, b.IsMissing(1))
}
