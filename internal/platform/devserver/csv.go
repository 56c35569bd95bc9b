package devserver

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// csvColumns returns the union of record keys with "id" first and the rest
// sorted, so exports of the same data are byte-identical.
func csvColumns(records contract.RecordSet) []string {
	seen := map[string]bool{}
	var cols []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i] == "id" || cols[j] == "id" {
			return cols[i] == "id"
		}
		return cols[i] < cols[j]
	})
	return cols
}

func csvCell(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case int:
		return strconv.Itoa(tv)
	case json.Number:
		return tv.String()
	case map[string]any, []any:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprint(tv)
		}
		return string(b)
	default:
		return fmt.Sprint(tv)
	}
}

// encodeCSV renders records as CSV with a header row.
func encodeCSV(records contract.RecordSet) ([]byte, error) {
	cols := csvColumns(records)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return nil, err
	}
	row := make([]string, len(cols))
	for _, rec := range records {
		for i, c := range cols {
			row[i] = csvCell(rec[c])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
