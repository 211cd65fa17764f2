// Package guard provides the single in-flight request lease used by game
// tables. Leases expire after a TTL so a crashed holder cannot wedge a key.
package guard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds how long a lease may be held without release.
const DefaultTTL = 30 * time.Second

var (
	ErrHeld     = errors.New("guard: lease held")
	ErrEmptyKey = errors.New("guard: empty key")
)

// Guard hands out exclusive leases per key. Release is idempotent.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type memEntry struct {
	token   uint64
	expires time.Time
}

// Memory is a process-local Guard.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	held  map[string]memEntry
	token uint64
}

// NewMemory returns a Memory guard. ttl <= 0 uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, held: make(map[string]memEntry)}
}

func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.held[key]; ok && now.Before(e.expires) {
		return nil, ErrHeld
	}
	m.token++
	tok := m.token
	m.held[key] = memEntry{token: tok, expires: now.Add(m.ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if e, ok := m.held[key]; ok && e.token == tok {
				delete(m.held, key)
			}
			m.mu.Unlock()
		})
	}, nil
}

// Held reports whether key currently has a live lease.
func (m *Memory) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.held[strings.TrimSpace(key)]
	return ok && m.now().Before(e.expires)
}
