package store

import (
	"context"
	"errors"

	"vintrek/internal/workflow"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrBusy     = errors.New("session is busy")
)

// SessionStore persists sessions and guards them with a per-session busy
// lock. The lock is never waited on: a held lock fails fast with ErrBusy.
type SessionStore interface {
	Get(ctx context.Context, id string) (*workflow.Session, error)
	Save(ctx context.Context, s *workflow.Session) error
	Delete(ctx context.Context, id string) error

	// Lock takes the busy lock and returns the function that releases it.
	Lock(ctx context.Context, id string) (func(), error)
	IsLocked(ctx context.Context, id string) (bool, error)
}
