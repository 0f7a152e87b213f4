package session

import (
	"sync"
	"time"

	"github.com/annolab/imagejudge/internal/tasks"
	"github.com/google/uuid"
)

// Session ties one annotator's navigator to the resolver for its image
// references. Each session owns its state exclusively; nothing here is shared
// between sessions except the store behind the navigator.
type Session struct {
	ID        uuid.UUID
	Navigator *Navigator
	Resolver  tasks.Resolver
	CreatedAt time.Time
}

// Manager is a uuid-keyed registry of live sessions, safe for concurrent
// handlers.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (m *Manager) Create(nav *Navigator, resolver tasks.Resolver) *Session {
	s := &Session{
		ID:        uuid.New(),
		Navigator: nav,
		Resolver:  resolver,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
