// Package session routes requests to per-session identifier trackers.
//
// Each logical session (one agent conversation) owns its own
// tracker.Tracker. The Registry creates sessions on demand and serializes
// every operation on a session's tracker, so unrelated sessions never
// contend and nothing is shared globally.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/pyward/internal/tracker"
)

// DefaultID is the session used when a request carries no session key.
const DefaultID = "default"

// Session is one tracker plus the lock that guards it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	tracker *tracker.Tracker
}

// Do runs fn with exclusive access to the session's tracker. fn must not
// retain the tracker after returning.
func (s *Session) Do(fn func(t *tracker.Tracker)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.tracker)
}

// Summary is a read-only view of a session for listings.
type Summary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Identifiers int       `json:"identifiers"`
}

// Registry owns every live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
	opts     []tracker.Option
}

// NewRegistry creates an empty Registry. The tracker options are applied to
// every tracker the registry creates.
func NewRegistry(opts ...tracker.Option) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
		opts:     opts,
	}
}

// Resolve maps an empty session key to DefaultID.
func Resolve(id string) string {
	if id == "" {
		return DefaultID
	}
	return id
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(id string) *Session {
	id = Resolve(id)

	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s = &Session{
		ID:        id,
		CreatedAt: r.now(),
		tracker:   tracker.New(r.opts...),
	}
	r.sessions[id] = s
	return s
}

// Peek returns the session for id without creating it.
func (r *Registry) Peek(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[Resolve(id)]
	return s, ok
}

// NewID returns a fresh random session key.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// Clear empties the tracker of session id. It reports whether the session
// existed; the session itself stays registered.
func (r *Registry) Clear(id string) bool {
	s, ok := r.Peek(id)
	if !ok {
		return false
	}
	s.Do(func(t *tracker.Tracker) { t.Clear() })
	return true
}

// Drop removes session id entirely.
func (r *Registry) Drop(id string) bool {
	id = Resolve(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// List summarizes every session, sorted by ID.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		sum := Summary{ID: s.ID, CreatedAt: s.CreatedAt}
		s.Do(func(t *tracker.Tracker) { sum.Identifiers = t.Len() })
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
