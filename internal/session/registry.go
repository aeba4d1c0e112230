// ABOUTME: In-memory registry mapping driver session IDs to session bags
// ABOUTME: Sessions live for the process lifetime and are created on first contact

package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds the live sessions for the request driver, keyed by an
// opaque ID the driver round-trips (a cookie, for the web driver).
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for an ID, or nil if the ID is unknown.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Create registers a fresh anonymous session and returns its new ID.
func (r *Registry) Create() (string, *Session) {
	id := uuid.NewString()
	s := NewSession()

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return id, s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
