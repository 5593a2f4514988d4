package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordAt(vehicleID string, ts time.Time, nox float64) CanonicalRecord {
	return CanonicalRecord{Timestamp: ts, VehicleID: vehicleID, NOx: nox}
}

func TestFilterByDateRange(t *testing.T) {
	dataset := FleetDataset{Records: []CanonicalRecord{
		recordAt("A", time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC), 10),
		recordAt("A", time.Date(2025, 1, 2, 0, 0, 1, 0, time.UTC), 20),
		recordAt("B", time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC), 30),
		recordAt("B", time.Date(2025, 1, 4, 8, 0, 0, 0, time.UTC), 40),
	}}

	t.Run("inclusive on both ends", func(t *testing.T) {
		got := FilterByDateRange(dataset,
			time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		)
		require.Equal(t, 2, got.Len())
		assert.Equal(t, 20.0, got.Records[0].NOx)
		assert.Equal(t, 30.0, got.Records[1].NOx)
	})

	t.Run("time of day within bound dates is irrelevant", func(t *testing.T) {
		// Bounds carry a late time of day; only their date component counts.
		got := FilterByDateRange(dataset,
			time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
		)
		require.Equal(t, 1, got.Len())
		assert.Equal(t, 10.0, got.Records[0].NOx)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		before := make([]CanonicalRecord, len(dataset.Records))
		copy(before, dataset.Records)

		FilterByDateRange(dataset,
			time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		)

		assert.Empty(t, cmp.Diff(before, dataset.Records))
	})
}

func TestFilterByVehicles(t *testing.T) {
	dataset := FleetDataset{Records: []CanonicalRecord{
		recordAt("A", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), 10),
		recordAt("B", time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 20),
		recordAt("A", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), 30),
	}}

	t.Run("membership filter", func(t *testing.T) {
		got := FilterByVehicles(dataset, []string{"A"})
		require.Equal(t, 2, got.Len())
		assert.Equal(t, "A", got.Records[0].VehicleID)
		assert.Equal(t, "A", got.Records[1].VehicleID)
	})

	t.Run("empty selection means no filtering", func(t *testing.T) {
		got := FilterByVehicles(dataset, nil)
		assert.Empty(t, cmp.Diff(dataset.Records, got.Records))
	})

	t.Run("unknown vehicle yields empty dataset", func(t *testing.T) {
		got := FilterByVehicles(dataset, []string{"Z"})
		assert.True(t, got.IsEmpty())
	})
}

func TestFleetDataset_Vehicles(t *testing.T) {
	dataset := FleetDataset{Records: []CanonicalRecord{
		recordAt("B", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), 10),
		recordAt("A", time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 20),
		recordAt("B", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), 30),
	}}

	assert.Equal(t, []string{"A", "B"}, dataset.Vehicles())
}

func TestFleetDataset_TimeSpan(t *testing.T) {
	t.Run("empty dataset", func(t *testing.T) {
		start, end := FleetDataset{}.TimeSpan()
		assert.True(t, start.IsZero())
		assert.True(t, end.IsZero())
	})

	t.Run("unordered records", func(t *testing.T) {
		dataset := FleetDataset{Records: []CanonicalRecord{
			recordAt("A", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), 10),
			recordAt("A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 20),
			recordAt("A", time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), 30),
		}}
		start, end := dataset.TimeSpan()
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), end)
	})
}
