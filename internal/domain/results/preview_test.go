package results

import (
	"strings"
	"testing"

	"github.com/synthfhir/synthfhir/pkg/contract"
	"github.com/synthfhir/synthfhir/pkg/pagination"
)

func wideRecord(i int) contract.Record {
	return contract.Record{
		"id":      float64(i),
		"a":       "x",
		"b":       true,
		"c":       nil,
		"d":       map[string]any{"k": strings.Repeat("v", 80)},
		"e":       []any{1.0, 2.0},
		"f":       strings.Repeat("z", 60),
		"g":       1.5,
		"extra_1": "hidden",
	}
}

func TestBuildPreview_ColumnsAndCells(t *testing.T) {
	recs := contract.RecordSet{wideRecord(1), wideRecord(2)}
	p := BuildPreview(contract.ResourcePatient, recs, pagination.Params{})

	wantCols := []string{"id", "a", "b", "c", "d", "e"}
	if strings.Join(p.Columns, ",") != strings.Join(wantCols, ",") {
		t.Errorf("unexpected columns %v", p.Columns)
	}
	if !p.MoreColumns {
		t.Error("expected more-columns marker")
	}
	if len(p.Rows) != 2 || p.Rows[0].Hidden != 3 {
		t.Fatalf("unexpected rows %+v", p.Rows)
	}

	cells := p.Rows[0].Cells
	if cells[0] != "1" || cells[1] != "x" || cells[2] != "true" || cells[3] != "null" {
		t.Errorf("unexpected scalar cells %q", cells[:4])
	}
	if !strings.HasSuffix(cells[4], "...") || len(cells[4]) != PreviewCellSize+3 {
		t.Errorf("object cell should be cut JSON plus ellipsis, got %q", cells[4])
	}
	if cells[5] != "[1,2]..." {
		t.Errorf("array cell should be JSON plus ellipsis, got %q", cells[5])
	}
}

func TestFormatCell_TruncatesScalars(t *testing.T) {
	if got := FormatCell(strings.Repeat("é", 60)); len([]rune(got)) != PreviewCellSize {
		t.Errorf("expected %d runes, got %d", PreviewCellSize, len([]rune(got)))
	}
	if got := FormatCell(1.25); got != "1.25" {
		t.Errorf("unexpected number cell %q", got)
	}
}

func TestBuildPreview_Paging(t *testing.T) {
	p := BuildPreview(contract.ResourceClaim, records(25), pagination.Params{})
	if len(p.Rows) != PreviewRows {
		t.Errorf("expected first %d rows, got %d", PreviewRows, len(p.Rows))
	}
	if p.Footer() != "Showing 1-10 of 25 records" {
		t.Errorf("unexpected footer %q", p.Footer())
	}

	p = BuildPreview(contract.ResourceClaim, records(25), pagination.Params{Limit: 10, Offset: 20})
	if len(p.Rows) != 5 || p.Rows[0].Cells[0] != "21" {
		t.Errorf("unexpected last page %+v", p.Rows)
	}
	if p.Footer() != "Showing 21-25 of 25 records" {
		t.Errorf("unexpected footer %q", p.Footer())
	}

	if off, ok := p.Previous(); !ok || off != 10 {
		t.Errorf("expected previous page at 10, got %d %v", off, ok)
	}
	if _, ok := p.Next(); ok {
		t.Error("last page has no next page")
	}

	mid := BuildPreview(contract.ResourceClaim, records(25), pagination.Params{Limit: 10, Offset: 5})
	if off, ok := mid.Next(); !ok || off != 15 {
		t.Errorf("expected next page at 15, got %d %v", off, ok)
	}
	if off, ok := mid.Previous(); !ok || off != 0 {
		t.Errorf("expected previous page clamped to 0, got %d %v", off, ok)
	}

	small := BuildPreview(contract.ResourceClaim, records(3), pagination.Params{})
	if _, ok := small.Next(); ok {
		t.Error("single page has no next page")
	}
	if _, ok := small.Previous(); ok {
		t.Error("first page has no previous page")
	}
	if small.Footer() != "" || small.MoreColumns || small.Rows[0].Hidden != 0 {
		t.Errorf("small set needs no footer or markers: %+v", small)
	}
}

func TestBuildPreview_Empty(t *testing.T) {
	p := BuildPreview(contract.ResourcePatient, nil, pagination.Params{})
	if p.Total != 0 || len(p.Columns) != 0 || len(p.Rows) != 0 || p.Footer() != "" {
		t.Errorf("expected empty preview, got %+v", p)
	}
}
