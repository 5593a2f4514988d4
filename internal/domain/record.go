package domain

import (
	"sort"
	"time"
)

// RawRow is one input CSV line keyed by trimmed header name.
// Rows are ephemeral; they exist only while a table is being normalized.
type RawRow map[string]string

// RawTable is a parsed CSV file before normalization. Headers keep the
// original column order so passthrough fields survive in a stable order.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// CanonicalRecord is a single telemetry reading after normalization into
// the fixed internal schema. Timestamp and NOx are guaranteed present on
// every record that survives normalization; O2 and position are optional.
// Latitude and Longitude are always both set or both nil.
type CanonicalRecord struct {
	Timestamp time.Time         `json:"timestamp"`
	VehicleID string            `json:"vehicle_id"`
	NOx       float64           `json:"nox"`
	O2        *float64          `json:"o2,omitempty"`
	Latitude  *float64          `json:"latitude,omitempty"`
	Longitude *float64          `json:"longitude,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// HasPosition reports whether the record carries a coordinate pair.
func (r CanonicalRecord) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// FleetDataset is an ordered collection of canonical records built by
// concatenating normalized input files. Datasets are treated as immutable
// values: filters return new datasets and never modify the receiver.
type FleetDataset struct {
	Records  []CanonicalRecord `json:"records"`
	LoadedAt time.Time         `json:"loaded_at"`
}

// NewFleetDataset stamps a dataset with the current clock time.
func NewFleetDataset(records []CanonicalRecord) FleetDataset {
	return FleetDataset{Records: records, LoadedAt: clock.Now()}
}

// Len returns the number of records in the dataset.
func (d FleetDataset) Len() int { return len(d.Records) }

// IsEmpty reports whether the dataset holds no records.
func (d FleetDataset) IsEmpty() bool { return len(d.Records) == 0 }

// Vehicles returns the distinct vehicle IDs in ascending order.
func (d FleetDataset) Vehicles() []string {
	seen := make(map[string]struct{})
	for _, r := range d.Records {
		seen[r.VehicleID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TimeSpan returns the earliest and latest record timestamps. Both are
// zero when the dataset is empty.
func (d FleetDataset) TimeSpan() (start, end time.Time) {
	for _, r := range d.Records {
		if start.IsZero() || r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if end.IsZero() || r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	return start, end
}

// Concat appends the records of other after the receiver's, preserving
// per-source order. Record slices are copied so neither input is aliased.
func (d FleetDataset) Concat(other FleetDataset) FleetDataset {
	merged := make([]CanonicalRecord, 0, len(d.Records)+len(other.Records))
	merged = append(merged, d.Records...)
	merged = append(merged, other.Records...)
	return FleetDataset{Records: merged, LoadedAt: clock.Now()}
}

// SummaryStats is a read-only snapshot of fleet-wide NOx statistics.
type SummaryStats struct {
	GlobalMeanNOx   float64 `json:"global_mean_nox"`
	GlobalMedianNOx float64 `json:"global_median_nox"`
	VehicleCount    int     `json:"n_vehicles"`
	RecordCount     int     `json:"n_records"`
}

// RankingRow is one vehicle's entry in the threshold-exceedance ranking.
type RankingRow struct {
	VehicleID              string  `json:"vehicle_id"`
	MeanNOx                float64 `json:"mean_nox"`
	MedianNOx              float64 `json:"median_nox"`
	FractionAboveThreshold float64 `json:"fraction_time_above_threshold"`
}

// VehicleMean feeds the per-vehicle mean NOx bar chart.
type VehicleMean struct {
	VehicleID string  `json:"vehicle_id"`
	MeanNOx   float64 `json:"mean_nox"`
}

// HourMean feeds the mean-NOx-by-hour-of-day line chart.
type HourMean struct {
	Hour    int     `json:"hour"`
	MeanNOx float64 `json:"mean_nox"`
}
