package cache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"
)

// entryOverhead approximates the bookkeeping cost of one cache entry beyond
// the token string itself (list element, map slot, identity value).
const entryOverhead = 128

type memoryEntry struct {
	token     string
	id        Identity
	writtenAt time.Time
	size      int
}

// MemoryConfig configures a [Memory] cache.
type MemoryConfig struct {
	// MaxBytes bounds the total accounted size of all entries.
	MaxBytes int
	// TTL is the entry lifetime, counted from the write. Reads never
	// extend it; there is no reason to cache a token longer than it is
	// valid, so this is normally the access-token TTL.
	TTL time.Duration
	// Now supplies the current time. Defaults to time.Now.
	Now func() time.Time
}

// Memory is a mutex-guarded LRU cache bounded by total byte size.
//
// Eviction happens from the least-recently-used tail when a Put would exceed
// MaxBytes. Expired entries are dropped lazily on Get and Revoke.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	total    int
	maxBytes int
	ttl      time.Duration
	now      func() time.Time
}

// NewMemory validates cfg and returns an empty cache.
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	if cfg.MaxBytes <= 0 {
		return nil, errors.New("cache MaxBytes must be > 0")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("cache TTL must be > 0")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Memory{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		maxBytes: cfg.MaxBytes,
		ttl:      cfg.TTL,
		now:      cfg.Now,
	}, nil
}

// Put stores id under token, resetting the entry's TTL and recency. The
// least-recently-used entries are evicted until the byte bound holds.
func (m *Memory) Put(_ context.Context, token string, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[token]; ok {
		m.removeLocked(elem)
	}

	entry := &memoryEntry{
		token:     token,
		id:        id,
		writtenAt: m.now(),
		size:      len(token) + len(id.Role) + entryOverhead,
	}

	m.entries[token] = m.order.PushFront(entry)
	m.total += entry.size

	for m.total > m.maxBytes && m.order.Len() > 1 {
		m.removeLocked(m.order.Back())
	}
	// A single oversized entry is allowed to stand; evicting it would make
	// the cache useless for large tokens without helping anyone.
	return nil
}

// Get returns the identity cached under token. A hit refreshes the LRU
// position but never the TTL.
func (m *Memory) Get(_ context.Context, token string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[token]
	if !ok {
		return Identity{}, false, nil
	}

	entry := elem.Value.(*memoryEntry)
	if m.expiredLocked(entry) {
		m.removeLocked(elem)
		return Identity{}, false, nil
	}

	m.order.MoveToFront(elem)
	return entry.id, true, nil
}

// Revoke removes the entry and returns the prior identity if it was present
// and unexpired.
func (m *Memory) Revoke(_ context.Context, token string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[token]
	if !ok {
		return Identity{}, false, nil
	}

	entry := elem.Value.(*memoryEntry)
	m.removeLocked(elem)

	if m.expiredLocked(entry) {
		return Identity{}, false, nil
	}
	return entry.id, true, nil
}

// Len reports the current number of entries, expired ones included until
// they are lazily collected.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory) expiredLocked(entry *memoryEntry) bool {
	return !m.now().Before(entry.writtenAt.Add(m.ttl))
}

func (m *Memory) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	m.order.Remove(elem)
	delete(m.entries, entry.token)
	m.total -= entry.size
}
