package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/tagfind/internal/db"
	"github.com/kailas-cloud/tagfind/internal/domain"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
)

// kvStore is the consumer interface for session storage (ISP).
type kvStore interface {
	db.Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo stores session snapshots as JSON strings. Expiry is refreshed on Save only.
type Repo struct {
	store     kvStore
	keyPrefix string
	ttl       time.Duration
}

// New creates a KV-backed session repository.
func New(store kvStore, keyPrefix string, ttl time.Duration) *Repo {
	return &Repo{store: store, keyPrefix: keyPrefix, ttl: ttl}
}

// Save writes the session and refreshes its TTL.
func (r *Repo) Save(ctx context.Context, s *domsession.Session) error {
	data, err := marshalSession(s)
	if err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, r.key(s.ID()), data, r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID(), err)
	}
	return nil
}

// Get loads a session. Missing or expired sessions give ErrSessionNotFound.
func (r *Repo) Get(ctx context.Context, id string) (*domsession.Session, error) {
	data, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	s, err := unmarshalSession(data)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Ping checks the underlying store.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("session store ping: %w", err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.keyPrefix + "session:" + id
}
