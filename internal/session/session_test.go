package session_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/couchcryptid/fleet-nox-analytics/internal/observability"
	"github.com/couchcryptid/fleet-nox-analytics/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var playbackBase = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func positioned(vehicleID string, ts time.Time, lat, lon float64) domain.CanonicalRecord {
	return domain.CanonicalRecord{
		Timestamp: ts,
		VehicleID: vehicleID,
		NOx:       10,
		Latitude:  &lat,
		Longitude: &lon,
	}
}

func unpositioned(vehicleID string, ts time.Time) domain.CanonicalRecord {
	return domain.CanonicalRecord{Timestamp: ts, VehicleID: vehicleID, NOx: 10}
}

func newStore(clock clockwork.Clock, ttl time.Duration) *session.Store {
	return session.NewStore(ttl, clock, observability.NewMetricsForTesting())
}

func TestStore_CreateAndGet(t *testing.T) {
	clock := clockwork.NewFakeClockAt(playbackBase)
	store := newStore(clock, time.Hour)

	s := store.Create(domain.FleetDataset{}, nil)
	require.NotEmpty(t, s.ID)

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	_, ok = store.Get("nope")
	assert.False(t, ok)
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	clock := clockwork.NewFakeClockAt(playbackBase)
	store := newStore(clock, time.Hour)

	s := store.Create(domain.FleetDataset{}, nil)
	require.Equal(t, 1, store.Len())

	// Access within the TTL keeps the session alive.
	clock.Advance(30 * time.Minute)
	_, ok := store.Get(s.ID)
	require.True(t, ok)

	clock.Advance(61 * time.Minute)
	_, ok = store.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_ZeroTTLDisablesExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(playbackBase)
	store := newStore(clock, 0)

	s := store.Create(domain.FleetDataset{}, nil)
	clock.Advance(1000 * time.Hour)
	_, ok := store.Get(s.ID)
	assert.True(t, ok)
}

func TestSession_Playback(t *testing.T) {
	dataset := domain.FleetDataset{Records: []domain.CanonicalRecord{
		positioned("A", playbackBase, -22.90, -43.17),
		positioned("A", playbackBase.Add(2*time.Minute), -22.91, -43.18),
		positioned("B", playbackBase.Add(6*time.Minute), -22.95, -43.20),
		unpositioned("A", playbackBase.Add(7*time.Minute)),
	}}

	clock := clockwork.NewFakeClockAt(playbackBase)
	store := newStore(clock, time.Hour)

	t.Run("first window starts at the dataset span", func(t *testing.T) {
		s := store.Create(dataset, nil)
		view := s.Playback(5*time.Minute, 0)

		assert.Equal(t, playbackBase, view.WindowStart)
		assert.Equal(t, playbackBase.Add(5*time.Minute), view.WindowEnd)
		assert.Equal(t, playbackBase, view.SpanStart)
		assert.Equal(t, playbackBase.Add(7*time.Minute), view.SpanEnd)
		require.Len(t, view.Records, 2)

		require.NotNil(t, view.Geo)
		assert.Equal(t, -22.91, view.Geo.MinLat)
		assert.Equal(t, -22.90, view.Geo.MaxLat)
		assert.Equal(t, -43.18, view.Geo.MinLon)
		assert.Equal(t, -43.17, view.Geo.MaxLon)
		// Two positioned readings roughly 1.5km apart.
		assert.InDelta(t, 1.5, view.Geo.VehicleDistanceKm["A"], 0.2)
	})

	t.Run("advancing steps the cursor forward", func(t *testing.T) {
		s := store.Create(dataset, nil)
		s.Playback(5*time.Minute, 0)

		view := s.Playback(5*time.Minute, 1)
		assert.Equal(t, playbackBase.Add(5*time.Minute), view.WindowStart)
		require.Len(t, view.Records, 2)
		assert.Equal(t, "B", view.Records[0].VehicleID)
	})

	t.Run("stepping back clamps at the span start", func(t *testing.T) {
		s := store.Create(dataset, nil)
		s.Playback(5*time.Minute, 0)

		view := s.Playback(5*time.Minute, -3)
		assert.Equal(t, playbackBase, view.WindowStart)
	})

	t.Run("window without positioned records has no geo summary", func(t *testing.T) {
		noPos := domain.FleetDataset{Records: []domain.CanonicalRecord{
			unpositioned("A", playbackBase),
		}}
		s := store.Create(noPos, nil)

		view := s.Playback(time.Minute, 0)
		require.Len(t, view.Records, 1)
		assert.Nil(t, view.Geo)
	})

	t.Run("empty dataset yields an empty view", func(t *testing.T) {
		s := store.Create(domain.FleetDataset{}, nil)
		view := s.Playback(time.Minute, 0)
		assert.Empty(t, view.Records)
		assert.Nil(t, view.Geo)
	})
}
