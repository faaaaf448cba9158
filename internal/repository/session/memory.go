package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/tagfind/internal/domain"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
)

type memoryItem struct {
	row       sessionRow
	expiresAt time.Time
}

// Memory is an in-process session repository. Expiry is refreshed on Save only.
// Rows are stored by value so callers never share session state.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates an in-memory repository. ttl <= 0 disables expiry.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Save stores the session and refreshes its TTL.
func (m *Memory) Save(_ context.Context, s *domsession.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.ID()] = memoryItem{row: sessionToRow(s), expiresAt: m.expiry()}
	return nil
}

// Get loads a session. Expired sessions are evicted and reported missing.
func (m *Memory) Get(_ context.Context, id string) (*domsession.Session, error) {
	m.mu.Lock()
	item, ok := m.items[id]
	if ok && m.expired(item) {
		delete(m.items, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	s, err := sessionFromRow(item.row)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

// Delete removes a session.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(_ context.Context) error { return nil }

// Len returns the number of live sessions, evicting expired ones.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if m.expired(item) {
			delete(m.items, id)
		}
	}
	return len(m.items)
}

func (m *Memory) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func (m *Memory) expired(item memoryItem) bool {
	return !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt)
}
