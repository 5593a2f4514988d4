package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
)

// ReadTable parses CSV content into a raw table keyed by header name.
// The first line is the header; short or long data rows are tolerated,
// with missing cells absent from the row map and surplus cells ignored.
func ReadTable(r io.Reader) (domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return domain.RawTable{}, fmt.Errorf("read csv: no header row")
	}

	headers := all[0]
	table := domain.RawTable{Headers: headers}
	for _, cells := range all[1:] {
		row := make(domain.RawRow, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
