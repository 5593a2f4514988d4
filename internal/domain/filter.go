package domain

import "time"

// FilterByDateRange returns a new dataset containing the records whose
// calendar date falls within [start, end], inclusive on both ends. Only
// the date components of start and end are considered, and each record's
// date is taken in the timestamp's own location — no timezone conversion
// is applied.
func FilterByDateRange(dataset FleetDataset, start, end time.Time) FleetDataset {
	startDate := dateKey(start)
	endDate := dateKey(end)

	filtered := make([]CanonicalRecord, 0, len(dataset.Records))
	for _, r := range dataset.Records {
		d := dateKey(r.Timestamp)
		if d < startDate || d > endDate {
			continue
		}
		filtered = append(filtered, r)
	}
	return FleetDataset{Records: filtered, LoadedAt: dataset.LoadedAt}
}

// FilterByVehicles returns a new dataset containing only records emitted
// by the given vehicles. An empty selection means "no filtering" and
// returns the input dataset unchanged, not an empty one.
func FilterByVehicles(dataset FleetDataset, vehicleIDs []string) FleetDataset {
	if len(vehicleIDs) == 0 {
		return dataset
	}

	wanted := make(map[string]struct{}, len(vehicleIDs))
	for _, id := range vehicleIDs {
		wanted[id] = struct{}{}
	}

	filtered := make([]CanonicalRecord, 0, len(dataset.Records))
	for _, r := range dataset.Records {
		if _, ok := wanted[r.VehicleID]; ok {
			filtered = append(filtered, r)
		}
	}
	return FleetDataset{Records: filtered, LoadedAt: dataset.LoadedAt}
}

// dateKey reduces a time to a comparable calendar date in its own
// location, so ordering happens at date granularity rather than between
// instants.
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
