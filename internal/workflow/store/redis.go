package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vintrek/internal/workflow"
	"vintrek/pkg/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	sessionPrefix = "vintrek:session:"
	busyPrefix    = "vintrek:session:busy:"
)

// unlockScript deletes the busy key only while it still carries our token, so
// an expired lock taken over by another request is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisSessionStore struct {
	cfg    *config.Config
	client *redis.Client
}

func NewRedisSessionStore(cfg *config.Config) SessionStore {
	return &redisSessionStore{
		cfg:    cfg,
		client: cfg.Client.Redis,
	}
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*workflow.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess workflow.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *redisSessionStore) Save(ctx context.Context, sess *workflow.Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, sessionPrefix+sess.ID, data, s.cfg.SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	n, err := s.client.Del(ctx, sessionPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *redisSessionStore) Lock(ctx context.Context, id string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	key := busyPrefix + id
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, s.cfg.BusyLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to take session lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, id)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BackendTimeout)
		defer cancel()
		if err := unlockScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.cfg.Log.Warn("Failed to release session lock", "session_id", id, "error", err)
		}
	}, nil
}

func (s *redisSessionStore) IsLocked(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	n, err := s.client.Exists(ctx, busyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read session lock: %w", err)
	}
	return n > 0, nil
}
