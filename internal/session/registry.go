package session

import (
	"sync"
	"time"

	"github.com/atelier-nord/intake-api/internal/catalog"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

// Registry owns the live sessions of this process. Sessions are in-memory
// only; a restart drops in-progress sessions by design.
type Registry struct {
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	sessions map[string]*FormSession
	maxLive  int
}

// NewRegistry builds a registry bound to the immutable catalog.
func NewRegistry(cat *catalog.Catalog, maxLive int) *Registry {
	if maxLive <= 0 {
		maxLive = 1000
	}
	return &Registry{
		catalog:  cat,
		sessions: make(map[string]*FormSession),
		maxLive:  maxLive,
	}
}

// Create starts a new session and registers it.
func (r *Registry) Create() (*FormSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.maxLive {
		return nil, appErrors.ErrTooManySessions
	}
	sess := New(r.catalog)
	r.sessions[sess.ID()] = sess
	return sess, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*FormSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	return sess, nil
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SweepIdle removes sessions untouched for longer than ttl and returns
// the evicted ids. Submitted sessions are always eligible.
func (r *Registry) SweepIdle(ttl time.Duration) []string {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := make([]string, 0)
	for id, sess := range r.sessions {
		if sess.TouchedAt().Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
