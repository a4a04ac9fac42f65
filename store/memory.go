package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process [Store] with the same semantics as [Postgres],
// intended for tests and embedded use. A single mutex serializes every
// operation, which trivially satisfies the at-most-one-transition guarantee.
type Memory struct {
	mu      sync.Mutex
	rows    map[string]*Entity // keyed by id
	byToken map[string]string  // token -> id
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		rows:    make(map[string]*Entity),
		byToken: make(map[string]string),
	}
}

// Insert creates an Active row with a fresh uuid.
func (m *Memory) Insert(_ context.Context, n New) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(n), nil
}

func (m *Memory) insertLocked(n New) Entity {
	e := Entity{
		ID:        uuid.NewString(),
		UserID:    n.UserID,
		UserRole:  n.UserRole,
		Token:     n.Token,
		IssuedAt:  n.IssuedAt,
		ExpiresAt: n.ExpiresAt,
		Status:    StatusActive,
	}
	m.rows[e.ID] = &e
	m.byToken[e.Token] = e.ID
	return e
}

// SelectByID returns the row with the given id.
func (m *Memory) SelectByID(_ context.Context, id string) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return *row, nil
}

// SelectByToken returns the row holding the given token string.
func (m *Memory) SelectByToken(_ context.Context, token string) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[token]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return *m.rows[id], nil
}

// Revoke conditionally flips an Active row to Revoked.
func (m *Memory) Revoke(_ context.Context, id string) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revokeLocked(id)
}

func (m *Memory) revokeLocked(id string) (Entity, error) {
	row, ok := m.rows[id]
	if !ok || row.Status != StatusActive {
		return Entity{}, ErrNothingWasChanged
	}
	row.Status = StatusRevoked
	return *row, nil
}

// Prolong updates expiresAt only.
func (m *Memory) Prolong(_ context.Context, p Prolong) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[p.ID]
	if !ok {
		return Entity{}, ErrNothingWasChanged
	}
	row.ExpiresAt = p.ExpiresAt
	return *row, nil
}

// Rotate revokes oldID and inserts the replacement under one lock hold, so
// concurrent rotations of the same row have exactly one winner.
func (m *Memory) Rotate(_ context.Context, oldID string, n New) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.revokeLocked(oldID); err != nil {
		return Entity{}, err
	}
	return m.insertLocked(n), nil
}

// RevokeExpired flips every Active row past its expiry to Revoked.
func (m *Memory) RevokeExpired(_ context.Context, now time.Time) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entity
	for _, row := range m.rows {
		if row.Status == StatusActive && !row.ExpiresAt.After(now) {
			row.Status = StatusRevoked
			out = append(out, *row)
		}
	}
	return out, nil
}

// Delete hard-deletes one row.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return ErrNothingWasChanged
	}
	delete(m.byToken, row.Token)
	delete(m.rows, id)
	return nil
}

// DeleteExpiredFor hard-deletes rows expired for at least retention.
func (m *Memory) DeleteExpiredFor(_ context.Context, now time.Time, retention time.Duration) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-retention)
	var out []Entity
	for id, row := range m.rows {
		if !row.ExpiresAt.After(cutoff) {
			out = append(out, *row)
			delete(m.byToken, row.Token)
			delete(m.rows, id)
		}
	}
	return out, nil
}
