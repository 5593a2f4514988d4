package domain

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order when a timestamp column holds
// calendar/clock strings rather than epoch milliseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalize converts a raw CSV table into canonical records under the
// given schema. It returns a SchemaError when a mandatory column (vehicle
// identity, timestamp, NOx, O2) is absent or when a string timestamp
// column contains an unparsable value — both are fatal to the whole table.
//
// Per-value problems are handled the other way: non-numeric NOx/O2 and
// malformed positions degrade to missing, and rows left without a
// timestamp or NOx after coercion are dropped. Input order is preserved
// for the rows that survive.
func Normalize(table RawTable, schema Schema) ([]CanonicalRecord, error) {
	table = trimHeaders(table)

	vehicleCol, ok := resolveVehicleColumn(table, schema)
	if !ok {
		return nil, newSchemaError("missing vehicle identity column (tried %s)",
			strings.Join(schema.VehicleIDColumns, ", "))
	}
	if !table.hasColumn(schema.TimestampColumn) {
		return nil, newSchemaError("missing %s column", schema.TimestampColumn)
	}
	if !table.hasColumn(schema.NOxColumn) {
		return nil, newSchemaError("missing %s column", schema.NOxColumn)
	}
	if !table.hasColumn(schema.O2Column) {
		return nil, newSchemaError("missing %s column", schema.O2Column)
	}

	timestamps, err := resolveTimestamps(table, schema.TimestampColumn)
	if err != nil {
		return nil, err
	}

	consumed := consumedColumns(table, schema, vehicleCol)

	records := make([]CanonicalRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		ts := timestamps[i]
		nox, noxOK := parseFloatOrMissing(row[schema.NOxColumn])
		if ts.IsZero() || !noxOK {
			// Quality gate: rows without a usable timestamp or NOx
			// reading cannot reach analysis.
			continue
		}

		rec := CanonicalRecord{
			Timestamp: ts,
			VehicleID: strings.TrimSpace(row[vehicleCol]),
			NOx:       nox,
		}
		if v, ok := parseFloatOrMissing(row[schema.O2Column]); ok {
			rec.O2 = &v
		}
		rec.Latitude, rec.Longitude = resolvePosition(table, schema, row)
		rec.Extra = passthrough(table.Headers, row, consumed)

		records = append(records, rec)
	}
	return records, nil
}

// trimHeaders strips leading/trailing whitespace from every column name
// before any lookup, re-keying rows to match.
func trimHeaders(table RawTable) RawTable {
	headers := make([]string, len(table.Headers))
	dirty := false
	for i, h := range table.Headers {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != h {
			dirty = true
		}
	}
	if !dirty {
		return table
	}

	rows := make([]RawRow, len(table.Rows))
	for i, row := range table.Rows {
		trimmed := make(RawRow, len(row))
		for k, v := range row {
			trimmed[strings.TrimSpace(k)] = v
		}
		rows[i] = trimmed
	}
	return RawTable{Headers: headers, Rows: rows}
}

func (t RawTable) hasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// resolveVehicleColumn walks the schema's identity rule chain and returns
// the first candidate column present in the table.
func resolveVehicleColumn(table RawTable, schema Schema) (string, bool) {
	for _, col := range schema.VehicleIDColumns {
		if table.hasColumn(col) {
			return col, true
		}
	}
	return "", false
}

// resolveTimestamps interprets the timestamp column for the whole table.
// The numeric-vs-string decision is made once per table: if every
// non-empty value parses as a number, values are epoch milliseconds;
// otherwise they are calendar strings and a single unparsable value fails
// the load. Empty values yield a zero time and are dropped later.
func resolveTimestamps(table RawTable, col string) ([]time.Time, error) {
	numeric := true
	for _, row := range table.Rows {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
	}

	out := make([]time.Time, len(table.Rows))
	for i, row := range table.Rows {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if numeric {
			ms, _ := strconv.ParseFloat(v, 64)
			out[i] = time.UnixMilli(int64(ms)).UTC()
			continue
		}
		ts, ok := parseTimestampString(v)
		if !ok {
			return nil, newSchemaError("row %d: unparsable timestamp %q", i+1, v)
		}
		out[i] = ts
	}
	return out, nil
}

func parseTimestampString(v string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseFloatOrMissing coerces a raw cell to float64, reporting ok=false
// for empty or non-numeric values.
func parseFloatOrMissing(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// resolvePosition derives a coordinate pair for one row. Explicit
// latitude/longitude columns win over an embedded WKT position column;
// with neither present the record simply has no position. A half-parsed
// pair is collapsed to no position so latitude and longitude are always
// both set or both nil.
func resolvePosition(table RawTable, schema Schema, row RawRow) (*float64, *float64) {
	switch {
	case table.hasColumn(schema.LatitudeColumn) && table.hasColumn(schema.LongitudeColumn):
		lat, latOK := parseFloatOrMissing(row[schema.LatitudeColumn])
		lon, lonOK := parseFloatOrMissing(row[schema.LongitudeColumn])
		if !latOK || !lonOK {
			return nil, nil
		}
		return &lat, &lon
	case table.hasColumn(schema.PositionColumn):
		lat, lon, ok := ParsePosition(row[schema.PositionColumn])
		if !ok {
			return nil, nil
		}
		return &lat, &lon
	default:
		return nil, nil
	}
}

// consumedColumns returns the set of columns mapped into canonical fields
// for this table: the winning vehicle column, the mandatory sensor and
// timestamp columns, and whichever position source the table provides.
func consumedColumns(table RawTable, schema Schema, vehicleCol string) map[string]struct{} {
	consumed := map[string]struct{}{
		vehicleCol:             {},
		schema.TimestampColumn: {},
		schema.NOxColumn:       {},
		schema.O2Column:        {},
	}
	if table.hasColumn(schema.LatitudeColumn) && table.hasColumn(schema.LongitudeColumn) {
		consumed[schema.LatitudeColumn] = struct{}{}
		consumed[schema.LongitudeColumn] = struct{}{}
	} else if table.hasColumn(schema.PositionColumn) {
		consumed[schema.PositionColumn] = struct{}{}
	}
	return consumed
}

// passthrough copies the row's unconsumed columns verbatim, in no
// particular order. Returns nil when the table has no extra columns.
func passthrough(headers []string, row RawRow, consumed map[string]struct{}) map[string]string {
	var extra map[string]string
	for _, h := range headers {
		if _, ok := consumed[h]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[h] = row[h]
	}
	return extra
}
