package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vintrek/internal/workflow"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process. Sessions are stored encoded
// so callers never share a value with the store, as with Redis.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	busy     map[string]time.Time
	ttl      time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl, lockTTL time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memoryEntry),
		busy:     make(map[string]time.Time),
		ttl:      ttl,
		lockTTL:  lockTTL,
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*workflow.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || !m.now().Before(e.expiresAt) {
		delete(m.sessions, id)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var sess workflow.Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, sess *workflow.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) Lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if until, held := m.busy[id]; held && m.now().Before(until) {
		return nil, fmt.Errorf("%w: %s", ErrBusy, id)
	}
	until := m.now().Add(m.lockTTL)
	m.busy[id] = until

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.busy[id].Equal(until) {
			delete(m.busy, id)
		}
	}, nil
}

func (m *MemorySessionStore) IsLocked(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, held := m.busy[id]
	return held && m.now().Before(until), nil
}
