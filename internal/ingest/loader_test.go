package ingest_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/couchcryptid/fleet-nox-analytics/internal/ingest"
	"github.com/couchcryptid/fleet-nox-analytics/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	csvWithPosition = "vehicle_name,timestamp,NOx,O2,position\n" +
		"TRUCK_01,1735718400000,30,12,POINT(-43.17 -22.90)\n" +
		"TRUCK_01,1735718700000,60,11,POINT(-43.18 -22.91)\n"

	csvWithLatLon = "vehicle_number,timestamp,NOx,O2,latitude,longitude\n" +
		"42,2025-01-01T09:00:00Z,55,11,-22.90,-43.17\n"

	csvMissingNOxColumn = "vehicle_id,timestamp,O2\nV-1,1735718400000,12\n"
)

func newLoader(t *testing.T) *ingest.Loader {
	t.Helper()
	return ingest.NewLoader(domain.DefaultSchema(), slog.Default(), observability.NewMetricsForTesting())
}

func TestLoader_LoadAll(t *testing.T) {
	t.Run("concatenates sources in input order", func(t *testing.T) {
		loader := newLoader(t)

		report, err := loader.LoadAll([]ingest.Source{
			{Name: "a.csv", Reader: strings.NewReader(csvWithPosition)},
			{Name: "b.csv", Reader: strings.NewReader(csvWithLatLon)},
		})
		require.NoError(t, err)
		require.Len(t, report.Files, 2)
		assert.False(t, report.Files[0].Failed())
		assert.False(t, report.Files[1].Failed())
		require.Equal(t, 3, report.Dataset.Len())
		assert.Equal(t, "TRUCK_01", report.Dataset.Records[0].VehicleID)
		assert.Equal(t, "42", report.Dataset.Records[2].VehicleID)
	})

	t.Run("a bad file does not abort its siblings", func(t *testing.T) {
		loader := newLoader(t)

		report, err := loader.LoadAll([]ingest.Source{
			{Name: "bad.csv", Reader: strings.NewReader(csvMissingNOxColumn)},
			{Name: "good.csv", Reader: strings.NewReader(csvWithLatLon)},
		})
		require.NoError(t, err)
		require.Len(t, report.Files, 2)
		assert.True(t, report.Files[0].Failed())
		assert.True(t, domain.IsSchemaError(report.Files[0].Err))
		assert.Contains(t, report.Files[0].Err.Error(), "bad.csv")
		assert.False(t, report.Files[1].Failed())
		assert.Equal(t, 1, report.Dataset.Len())
	})

	t.Run("all files failing is terminal", func(t *testing.T) {
		loader := newLoader(t)

		report, err := loader.LoadAll([]ingest.Source{
			{Name: "bad1.csv", Reader: strings.NewReader(csvMissingNOxColumn)},
			{Name: "bad2.csv", Reader: strings.NewReader("not,a\nfleet,export\n")},
		})
		require.ErrorIs(t, err, ingest.ErrNoLoadableFiles)
		require.Len(t, report.Files, 2)
		assert.True(t, report.Files[0].Failed())
		assert.True(t, report.Files[1].Failed())
	})

	t.Run("no sources is terminal", func(t *testing.T) {
		loader := newLoader(t)
		_, err := loader.LoadAll(nil)
		require.ErrorIs(t, err, ingest.ErrNoLoadableFiles)
	})

	t.Run("dropped rows are counted per file", func(t *testing.T) {
		loader := newLoader(t)
		input := "vehicle_id,timestamp,NOx,O2\n" +
			"V-1,1735718400000,10,20\n" +
			"V-1,,11,20\n" +
			"V-1,1735718460000,,20\n"

		report, err := loader.LoadAll([]ingest.Source{
			{Name: "partial.csv", Reader: strings.NewReader(input)},
		})
		require.NoError(t, err)
		require.Len(t, report.Files, 1)
		assert.Equal(t, 3, report.Files[0].Rows)
		assert.Equal(t, 1, report.Files[0].Records)
		assert.Equal(t, 2, report.Files[0].Dropped)
	})

	t.Run("dataset is stamped with the clock time", func(t *testing.T) {
		loadedAt := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
		domain.SetClock(clockwork.NewFakeClockAt(loadedAt))
		defer domain.SetClock(nil)

		loader := newLoader(t)
		report, err := loader.LoadAll([]ingest.Source{
			{Name: "a.csv", Reader: strings.NewReader(csvWithLatLon)},
		})
		require.NoError(t, err)
		assert.Equal(t, loadedAt, report.Dataset.LoadedAt)
	})
}

// Loading files separately and concatenating must equal loading them in
// one batch, record for record.
func TestLoader_ConcatEquivalence(t *testing.T) {
	loader := newLoader(t)

	separateA, err := loader.LoadAll([]ingest.Source{{Name: "a.csv", Reader: strings.NewReader(csvWithPosition)}})
	require.NoError(t, err)
	separateB, err := loader.LoadAll([]ingest.Source{{Name: "b.csv", Reader: strings.NewReader(csvWithLatLon)}})
	require.NoError(t, err)

	batch, err := loader.LoadAll([]ingest.Source{
		{Name: "a.csv", Reader: strings.NewReader(csvWithPosition)},
		{Name: "b.csv", Reader: strings.NewReader(csvWithLatLon)},
	})
	require.NoError(t, err)

	combined := separateA.Dataset.Concat(separateB.Dataset)
	assert.Empty(t, cmp.Diff(batch.Dataset.Records, combined.Records))
}

func TestReadTable(t *testing.T) {
	t.Run("short rows leave cells absent", func(t *testing.T) {
		table, err := ingest.ReadTable(strings.NewReader("a,b,c\n1,2\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, table.Headers)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "1", table.Rows[0]["a"])
		assert.Equal(t, "2", table.Rows[0]["b"])
		_, ok := table.Rows[0]["c"]
		assert.False(t, ok)
	})

	t.Run("empty input has no header", func(t *testing.T) {
		_, err := ingest.ReadTable(strings.NewReader(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no header")
	})
}
