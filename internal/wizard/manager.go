package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("wizard session not found or expired")

// ErrNotOwner is returned when someone other than the organizer drives a
// session.
var ErrNotOwner = errors.New("only the organizer can use this wizard")

// Manager keeps in-progress sessions. Sessions expire after the configured
// TTL; the oldest are evicted once the cache is full.
type Manager struct {
	catalog  *Catalog
	sessions *expirable.LRU[string, *Session]

	// per-session operations are serialized through mu; sessions are tiny
	// and interactions rare, so one lock is enough.
	mu sync.Mutex
}

// NewManager creates a Manager holding at most size sessions for ttl each.
func NewManager(catalog *Catalog, size int, ttl time.Duration) *Manager {
	return &Manager{
		catalog:  catalog,
		sessions: expirable.NewLRU[string, *Session](size, nil, ttl),
	}
}

// Catalog returns the venue catalog offered by every session.
func (m *Manager) Catalog() *Catalog { return m.catalog }

// Start opens a new session for the organizer.
func (m *Manager) Start(organizerID, organizerName, content string) *Session {
	s := newSession(uuid.NewString(), organizerID, organizerName, content, m.catalog)
	m.sessions.Add(s.ID, s)
	return s
}

// Update runs fn against the session when actorID owns it. Sessions that
// reach a terminal step are dropped afterwards.
func (m *Manager) Update(id, actorID string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.OrganizerID != actorID {
		return nil, ErrNotOwner
	}
	err := fn(s)
	if s.step == StepDone || s.step == StepDiscarded {
		m.sessions.Remove(id)
	}
	return s, err
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}
