package domain

import (
	"sort"
)

// ComputeSummary aggregates fleet-wide NOx statistics over a dataset.
// Returns ErrEmptyDataset when there are no records, since mean and
// median are undefined.
func ComputeSummary(dataset FleetDataset) (SummaryStats, error) {
	if dataset.IsEmpty() {
		return SummaryStats{}, ErrEmptyDataset
	}

	values := noxValues(dataset.Records)
	return SummaryStats{
		GlobalMeanNOx:   mean(values),
		GlobalMedianNOx: median(values),
		VehicleCount:    len(dataset.Vehicles()),
		RecordCount:     dataset.Len(),
	}, nil
}

// ComputeRanking groups records by vehicle and ranks vehicles by the
// fraction of their readings strictly above threshold, descending. Ties
// keep ascending vehicle-ID order so the result is deterministic across
// runs. An empty dataset yields an empty table, not an error.
func ComputeRanking(dataset FleetDataset, threshold float64) []RankingRow {
	groups := groupNOxByVehicle(dataset.Records)

	rows := make([]RankingRow, 0, len(groups))
	for _, id := range sortedKeys(groups) {
		values := groups[id]
		above := 0
		for _, v := range values {
			if v > threshold {
				above++
			}
		}
		rows = append(rows, RankingRow{
			VehicleID:              id,
			MeanNOx:                mean(values),
			MedianNOx:              median(values),
			FractionAboveThreshold: float64(above) / float64(len(values)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FractionAboveThreshold > rows[j].FractionAboveThreshold
	})
	return rows
}

// MeanNOxByVehicle returns each vehicle's mean NOx in ascending vehicle-ID
// order, the feed behind the per-vehicle bar chart.
func MeanNOxByVehicle(dataset FleetDataset) []VehicleMean {
	groups := groupNOxByVehicle(dataset.Records)

	means := make([]VehicleMean, 0, len(groups))
	for _, id := range sortedKeys(groups) {
		means = append(means, VehicleMean{VehicleID: id, MeanNOx: mean(groups[id])})
	}
	return means
}

// MeanNOxByHour returns mean NOx per hour of day (0-23) in hour order,
// covering only the hours present in the dataset.
func MeanNOxByHour(dataset FleetDataset) []HourMean {
	byHour := make(map[int][]float64)
	for _, r := range dataset.Records {
		h := r.Timestamp.Hour()
		byHour[h] = append(byHour[h], r.NOx)
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	means := make([]HourMean, 0, len(hours))
	for _, h := range hours {
		means = append(means, HourMean{Hour: h, MeanNOx: mean(byHour[h])})
	}
	return means
}

func groupNOxByVehicle(records []CanonicalRecord) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, r := range records {
		groups[r.VehicleID] = append(groups[r.VehicleID], r.NOx)
	}
	return groups
}

func sortedKeys(groups map[string][]float64) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func noxValues(records []CanonicalRecord) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.NOx
	}
	return values
}

// mean calculates the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median calculates the median value. An even-count input yields the
// average of the two middle values after ascending sort.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Sort a copy to avoid modifying the caller's slice.
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
