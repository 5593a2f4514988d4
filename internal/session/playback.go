package session

import (
	"sort"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.01

// PlaybackView is one time window of a session's dataset, the unit the
// map playback UI renders per step.
type PlaybackView struct {
	WindowStart time.Time                `json:"window_start"`
	WindowEnd   time.Time                `json:"window_end"`
	SpanStart   time.Time                `json:"span_start"`
	SpanEnd     time.Time                `json:"span_end"`
	Records     []domain.CanonicalRecord `json:"records"`
	Geo         *GeoSummary              `json:"geo,omitempty"`
}

// GeoSummary describes the positioned records inside a window: their
// bounding box and the distance each vehicle covered within the window.
type GeoSummary struct {
	MinLat            float64            `json:"min_lat"`
	MinLon            float64            `json:"min_lon"`
	MaxLat            float64            `json:"max_lat"`
	MaxLon            float64            `json:"max_lon"`
	VehicleDistanceKm map[string]float64 `json:"vehicle_distance_km"`
}

// Playback advances the session's playback cursor by advance windows
// (negative steps backwards, zero re-reads the current window) and
// returns the records whose timestamps fall in [cursor, cursor+width).
// The cursor starts at the dataset's earliest timestamp and is clamped to
// the dataset's time span.
func (s *Session) Playback(width time.Duration, advance int) PlaybackView {
	spanStart, spanEnd := s.Dataset.TimeSpan()

	s.mu.Lock()
	if s.cursor.IsZero() {
		s.cursor = spanStart
	}
	s.cursor = s.cursor.Add(time.Duration(advance) * width)
	if s.cursor.Before(spanStart) {
		s.cursor = spanStart
	}
	if s.cursor.After(spanEnd) {
		s.cursor = spanEnd
	}
	cursor := s.cursor
	s.mu.Unlock()

	view := PlaybackView{
		WindowStart: cursor,
		WindowEnd:   cursor.Add(width),
		SpanStart:   spanStart,
		SpanEnd:     spanEnd,
	}
	if s.Dataset.IsEmpty() {
		return view
	}

	for _, r := range s.Dataset.Records {
		if r.Timestamp.Before(view.WindowStart) || !r.Timestamp.Before(view.WindowEnd) {
			continue
		}
		view.Records = append(view.Records, r)
	}
	view.Geo = summarizeGeo(view.Records)
	return view
}

// summarizeGeo builds the bounding box and per-vehicle traveled distance
// over the positioned records of a window. Returns nil when no record in
// the window has a position.
func summarizeGeo(records []domain.CanonicalRecord) *GeoSummary {
	positioned := make([]domain.CanonicalRecord, 0, len(records))
	for _, r := range records {
		if r.HasPosition() {
			positioned = append(positioned, r)
		}
	}
	if len(positioned) == 0 {
		return nil
	}

	summary := &GeoSummary{
		MinLat:            *positioned[0].Latitude,
		MaxLat:            *positioned[0].Latitude,
		MinLon:            *positioned[0].Longitude,
		MaxLon:            *positioned[0].Longitude,
		VehicleDistanceKm: make(map[string]float64),
	}

	byVehicle := make(map[string][]domain.CanonicalRecord)
	for _, r := range positioned {
		summary.MinLat = min(summary.MinLat, *r.Latitude)
		summary.MaxLat = max(summary.MaxLat, *r.Latitude)
		summary.MinLon = min(summary.MinLon, *r.Longitude)
		summary.MaxLon = max(summary.MaxLon, *r.Longitude)
		byVehicle[r.VehicleID] = append(byVehicle[r.VehicleID], r)
	}

	for id, recs := range byVehicle {
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Timestamp.Before(recs[j].Timestamp)
		})
		var km float64
		for i := 1; i < len(recs); i++ {
			prev := s2.LatLngFromDegrees(*recs[i-1].Latitude, *recs[i-1].Longitude)
			cur := s2.LatLngFromDegrees(*recs[i].Latitude, *recs[i].Longitude)
			km += prev.Distance(cur).Radians() * earthRadiusKm
		}
		summary.VehicleDistanceKm[id] = km
	}
	return summary
}
