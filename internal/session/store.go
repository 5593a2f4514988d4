// Package session holds per-analysis-session state: the loaded dataset,
// its per-file load report, and the map-playback cursor. The analytic
// core never reads any of this; it is presentation-side state passed in
// explicitly.
package session

import (
	"sync"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/couchcryptid/fleet-nox-analytics/internal/ingest"
	"github.com/couchcryptid/fleet-nox-analytics/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Session is one analysis session over an immutable dataset.
type Session struct {
	ID        string
	Dataset   domain.FleetDataset
	Files     []ingest.FileResult
	CreatedAt time.Time

	mu         sync.Mutex
	lastAccess time.Time
	cursor     time.Time // playback window start; zero until first playback call
}

// Store keeps sessions in memory, evicting them after a TTL of
// inactivity. Expired sessions are pruned opportunistically on access —
// there is no background work.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	clock    clockwork.Clock
	ttl      time.Duration
	metrics  *observability.Metrics
}

// NewStore creates a session store. A zero or negative ttl disables
// expiry.
func NewStore(ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		clock:    clock,
		ttl:      ttl,
		metrics:  metrics,
	}
}

// Create registers a new session for the given load outcome and returns it.
func (st *Store) Create(dataset domain.FleetDataset, files []ingest.FileResult) *Session {
	now := st.clock.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Dataset:    dataset,
		Files:      files,
		CreatedAt:  now,
		lastAccess: now,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune(now)
	st.sessions[s.ID] = s
	st.metrics.SessionsActive.Set(float64(len(st.sessions)))
	return s
}

// Get returns the session with the given ID, refreshing its TTL.
func (st *Store) Get(id string) (*Session, bool) {
	now := st.clock.Now()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune(now)

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
	return s, true
}

// Delete removes a session if present.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	st.metrics.SessionsActive.Set(float64(len(st.sessions)))
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// prune drops sessions idle longer than the TTL. Caller holds st.mu.
func (st *Store) prune(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastAccess)
		s.mu.Unlock()
		if idle > st.ttl {
			delete(st.sessions, id)
		}
	}
	st.metrics.SessionsActive.Set(float64(len(st.sessions)))
}
