package session

import (
	"context"

	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
)

// Repository defines the storage contract for sessions.
type Repository interface {
	Save(ctx context.Context, s *domsession.Session) error
	Get(ctx context.Context, id string) (*domsession.Session, error)
	Delete(ctx context.Context, id string) error
}
