// Package domain models fleet telemetry readings and the computations
// built on top of them.
//
// # Input Data
//
// Readings arrive as CSV exports from vendor fleet-management systems.
// The exports disagree on naming but share a common shape: some column
// identifying the vehicle, a timestamp, NOx and O2 sensor readings, and
// optionally a position.
//
// Vehicle identity (first present column wins):
//
//	vehicle_id > vehicle_name > vehicle_number
//
// Timestamp encoding (decided once per file, never per row):
//
//	Numeric columns hold milliseconds since the Unix epoch:
//	  1735718400000 → 2025-01-01T08:00:00Z
//	Non-numeric columns hold calendar strings (ISO 8601 or close):
//	  "2025-01-01T08:00:00" — a single unparsable value fails the file.
//
// Position (first matching rule wins):
//
//	latitude + longitude columns, parsed independently
//	position column holding a WKT point: "POINT(lon lat)" — note the
//	  lon-first WKT axis order; internally latitude comes first
//	neither → the record has no position
//
// Columns the normalizer does not consume pass through verbatim.
//
// # Error Policy
//
// Two deliberately distinct paths:
//
//	Fatal per file (SchemaError): missing vehicle identity, timestamp,
//	NOx, or O2 column; an unparsable string timestamp.
//	Degrade per row: non-numeric NOx/O2 becomes missing, malformed
//	position becomes no-position. Rows missing timestamp or NOx after
//	coercion are dropped silently; the reduced record count is the only
//	trace.
//
// An empty dataset is an error for summary statistics (ErrEmptyDataset)
// but a valid, empty result for ranking.
package domain
