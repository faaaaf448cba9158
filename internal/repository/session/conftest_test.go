package session

import (
	"context"
	"time"

	"github.com/kailas-cloud/tagfind/internal/db"
	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
)

// mockKVStore implements kvStore on a plain map.
type mockKVStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	pingErr error
	getErr  error
	setErr  error
	delErr  error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockKVStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

func exampleSession() *domsession.Session {
	s := domsession.New("s1", tagfilter.HideAll)
	s.Reset([]candidate.Candidate{
		candidate.New("alpha", "Alpha", []string{"x", "y"}),
		candidate.New("beta", "Beta", []string{"x"}),
		candidate.New("gamma", "", []string{"y", "z"}),
	}, []string{"First"})
	return s
}
