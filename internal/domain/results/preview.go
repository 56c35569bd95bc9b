package results

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/synthfhir/synthfhir/pkg/contract"
	"github.com/synthfhir/synthfhir/pkg/pagination"
)

const (
	PreviewColumns  = 6
	PreviewRows     = 10
	PreviewCellSize = 50
)

// Preview is a table view of one record set.
type Preview struct {
	Kind    contract.ResourceKind
	Columns []string
	// MoreColumns is true when the first record has more than
	// PreviewColumns columns; the table then ends with a "..." column.
	MoreColumns bool
	Rows        []PreviewRow
	Total       int
	Page        pagination.Params
}

// PreviewRow holds the rendered cells of one record and the number of its
// columns left out of the table.
type PreviewRow struct {
	Cells  []string
	Hidden int
}

// Footer summarises which records are shown, e.g. "Showing 1-10 of 25
// records". It is empty when every record fits on the page.
func (p Preview) Footer() string {
	if p.Total == 0 || (p.Page.Offset == 0 && p.Total <= p.Page.Limit) {
		return ""
	}
	start, end := p.Page.Window(p.Total)
	if start == end {
		return fmt.Sprintf("No records at offset %d of %d", p.Page.Offset, p.Total)
	}
	return fmt.Sprintf("Showing %d-%d of %d records", start+1, end, p.Total)
}

// Previous returns the offset of the page before this one.
func (p Preview) Previous() (offset int, ok bool) {
	return p.Page.PreviousOffset(), p.Total > 0 && p.Page.HasPrevious()
}

// Next returns the offset of the page after this one.
func (p Preview) Next() (offset int, ok bool) {
	return p.Page.NextOffset(), p.Page.HasNext(p.Total)
}

// Preview builds the table for kind. A zero page shows the first
// PreviewRows records.
func (c *Controller) Preview(kind contract.ResourceKind, page pagination.Params) (Preview, error) {
	records, err := c.Records(kind)
	if err != nil {
		return Preview{}, err
	}
	return BuildPreview(kind, records, page), nil
}

// BuildPreview renders records the way the results table shows them.
func BuildPreview(kind contract.ResourceKind, records contract.RecordSet, page pagination.Params) Preview {
	page = pagination.New(page.Limit, page.Offset, PreviewRows)
	p := Preview{Kind: kind, Total: len(records), Page: page}
	if len(records) == 0 {
		return p
	}

	keys := columnOrder(records[0])
	p.MoreColumns = len(keys) > PreviewColumns
	if p.MoreColumns {
		keys = keys[:PreviewColumns]
	}
	p.Columns = keys

	start, end := page.Window(len(records))
	for _, rec := range records[start:end] {
		row := PreviewRow{Cells: make([]string, len(keys))}
		for i, k := range keys {
			row.Cells[i] = FormatCell(rec[k])
		}
		if n := len(rec); n > PreviewColumns {
			row.Hidden = n - PreviewColumns
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// columnOrder puts "id" first and sorts the remaining keys, since decoded
// records do not keep the backend's column order.
func columnOrder(rec contract.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "id" || keys[j] == "id" {
			return keys[i] == "id"
		}
		return keys[i] < keys[j]
	})
	return keys
}

// FormatCell renders a value for the preview. Objects and arrays are shown
// as JSON cut to PreviewCellSize characters followed by "..."; scalars are
// cut to PreviewCellSize characters.
func FormatCell(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case string:
		return truncate(tv, PreviewCellSize)
	case bool:
		return strconv.FormatBool(tv)
	case float64:
		return truncate(strconv.FormatFloat(tv, 'f', -1, 64), PreviewCellSize)
	case json.Number:
		return truncate(tv.String(), PreviewCellSize)
	case map[string]any, []any:
		b, err := json.Marshal(tv)
		if err != nil {
			return "..."
		}
		return truncate(string(b), PreviewCellSize) + "..."
	default:
		return truncate(fmt.Sprint(tv), PreviewCellSize)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
