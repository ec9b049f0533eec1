package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"doctrack/internal/model"
	"doctrack/internal/service"
)

// Manager hands out one Session per user. The least recently used sessions
// are dropped once the cache is full; a dropped session is rebuilt from the
// backend on next use.
type Manager struct {
	mu            sync.Mutex
	cache         *lru.Cache[string, *Session]
	documents     service.DocumentService
	teams         service.TeamService
	notifications service.NotificationService
}

func NewManager(size int, documents service.DocumentService, teams service.TeamService, notifications service.NotificationService) (*Manager, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Manager{
		cache:         cache,
		documents:     documents,
		teams:         teams,
		notifications: notifications,
	}, nil
}

// For returns the session of user, creating it when needed. A cached session
// whose profile no longer matches user is replaced.
func (m *Manager) For(user model.User) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.cache.Get(user.ID); ok {
		u := s.User()
		if u.Email == user.Email && u.DisplayName == user.DisplayName {
			return s
		}
	}
	s := New(user, m.documents, m.teams, m.notifications)
	m.cache.Add(user.ID, s)
	return s
}

// Drop forgets the session of userID, e.g. on sign-out.
func (m *Manager) Drop(userID string) {
	m.cache.Remove(userID)
}

func (m *Manager) Len() int {
	return m.cache.Len()
}
