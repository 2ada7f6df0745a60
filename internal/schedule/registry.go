package schedule

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	appLog "carecal/internal/log"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry tracks mounted screen sessions. Unmounting drops the state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open mounts a new session under a random id.
func (r *Registry) Open(opts SessionOptions) *Session {
	s := NewSession(uuid.NewString(), opts)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	appLog.Info("session opened", "id", s.ID(), "screen", string(s.Screen()), "seed_events", len(opts.Seed))
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close unmounts a session. Closing an unknown id is not an error.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		appLog.Info("session closed", "id", id)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
