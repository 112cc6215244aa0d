package dataset

import (
	"math"
	"testing"
)

func TestFromRecordsClassification(t *testing.T) {
	tests := []struct {
		name     string
		cells    []string
		wantType ColumnType
	}{
		{"all numeric", []string{"1", "2.5", "-3e2"}, TypeNumeric},
		{"numeric with missing", []string{"1", "", "NA"}, TypeNumeric},
		{"mixed", []string{"1", "two", "3"}, TypeCategorical},
		{"text", []string{"north", "south", "north"}, TypeCategorical},
		{"all missing", []string{"", "null", "N/A"}, TypeNumeric},
		{"boolean text", []string{"true", "false", "true"}, TypeCategorical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := [][]string{{"col"}}
			for _, c := range tt.cells {
				records = append(records, []string{c})
			}
			ds, err := FromRecords(records)
			if err != nil {
				t.Fatalf("FromRecords: %v", err)
			}
			col, ok := ds.Column("col")
			if !ok {
				t.Fatal("column missing")
			}
			if col.Type != tt.wantType {
				t.Errorf("type = %s, want %s", col.Type, tt.wantType)
			}
		})
	}
}

func TestFromRecordsMissingNormalization(t *testing.T) {
	ds, err := FromRecords([][]string{
		{"price", "region"},
		{"10.5", "north"},
		{" nan ", "NULL"},
		{"20", ""},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}

	price, _ := ds.Column("price")
	if !price.IsNumeric() {
		t.Fatalf("price should be numeric, got %s", price.Type)
	}
	if !price.IsMissing(1) || price.IsMissing(0) || price.IsMissing(2) {
		t.Errorf("price missing mask wrong: %v", price.Strings)
	}
	if got := price.MissingCount(); got != 1 {
		t.Errorf("price missing count = %d, want 1", got)
	}

	region, _ := ds.Column("region")
	if region.IsNumeric() {
		t.Fatal("region should be categorical")
	}
	if got := region.MissingCount(); got != 2 {
		t.Errorf("region missing count = %d, want 2", got)
	}
}

func TestFromRecordsHeaderHandling(t *testing.T) {
	ds, err := FromRecords([][]string{
		{" a ", "", "a", "a"},
		{"1", "2", "3", "4"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	want := []string{"a", "column_2", "a_2", "a_3"}
	got := ds.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFromRecordsRaggedRows(t *testing.T) {
	ds, err := FromRecords([][]string{
		{"a", "b"},
		{"1"},
		{"2", "3", "extra"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if ds.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", ds.RowCount())
	}
	b, _ := ds.Column("b")
	if !b.IsMissing(0) {
		t.Error("short row should pad with missing")
	}
	if b.IsMissing(1) {
		t.Error("long row should keep in-range cells")
	}
}

func TestFromRecordsEmptyInput(t *testing.T) {
	if _, err := FromRecords(nil); err == nil {
		t.Error("expected error for empty records")
	}
	// Header-only input is a legal zero-row dataset.
	ds, err := FromRecords([][]string{{"a", "b"}})
	if err != nil {
		t.Fatalf("header-only: %v", err)
	}
	if ds.RowCount() != 0 || ds.ColumnCount() != 2 {
		t.Errorf("got %dx%d, want 0x2", ds.RowCount(), ds.ColumnCount())
	}
}

func TestCellKeyCanonicalizesNumbers(t *testing.T) {
	ds, err := FromRecords([][]string{
		{"v"},
		{"1.0"},
		{"1.00"},
		{"2.5"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	col, _ := ds.Column("v")
	if col.CellKey(0) != col.CellKey(1) {
		t.Errorf("1.0 and 1.00 should share a key, got %q vs %q", col.CellKey(0), col.CellKey(1))
	}
	if col.CellKey(0) != "1" {
		t.Errorf("key = %q, want 1", col.CellKey(0))
	}
	if col.CellKey(2) != "2.5" {
		t.Errorf("key = %q, want 2.5", col.CellKey(2))
	}
}

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New([]Column{
		{Name: "a", Type: TypeCategorical, Strings: []string{"x"}},
		{Name: "a", Type: TypeCategorical, Strings: []string{"y"}},
	})
	if err == nil {
		t.Error("expected duplicate name error")
	}

	_, err = New([]Column{
		{Name: "a", Type: TypeCategorical, Strings: []string{"x"}},
		{Name: "b", Type: TypeCategorical, Strings: []string{"y", "z"}},
	})
	if err == nil {
		t.Error("expected row mismatch error")
	}
}

func TestBuildSchemaKeepsDatasetOrder(t *testing.T) {
	ds, err := FromRecords([][]string{
		{"n1", "c1", "n2", "c2"},
		{"1", "x", "2", "y"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	s := BuildSchema(ds)
	if len(s.Numeric) != 2 || s.Numeric[0] != "n1" || s.Numeric[1] != "n2" {
		t.Errorf("numeric = %v", s.Numeric)
	}
	if len(s.Categorical) != 2 || s.Categorical[0] != "c1" || s.Categorical[1] != "c2" {
		t.Errorf("categorical = %v", s.Categorical)
	}
}

func TestNonMissing(t *testing.T) {
	ds, err := FromRecords([][]string{
		{"v"},
		{"1"},
		{""},
		{"3"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	col, _ := ds.Column("v")
	vals := col.NonMissing()
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 3 {
		t.Errorf("NonMissing = %v, want [1 3]", vals)
	}
	if math.IsNaN(col.Floats[1]) != true {
		t.Error("missing numeric cell should be NaN")
	}
}

func TestHead(t *testing.T) {
	ds, err := FromRecords([][]string{
		{"a", "b"},
		{"1", "x"},
		{"2", "y"},
		{"3", "z"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	head := ds.Head(2)
	if len(head) != 3 {
		t.Fatalf("head rows = %d, want 3 (header + 2)", len(head))
	}
	if head[0][0] != "a" || head[2][1] != "y" {
		t.Errorf("head content wrong: %v", head)
	}
	if got := len(ds.Head(100)); got != 4 {
		t.Errorf("oversized head = %d rows, want 4", got)
	}
}
