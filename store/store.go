package store

import (
	"context"
	"errors"
	"time"
)

// Status is the stored lifecycle state of a refresh token. The transition
// Active -> Revoked is one-way.
type Status string

const (
	// StatusActive marks a refresh token that can still be rotated or revoked.
	StatusActive Status = "active"
	// StatusRevoked is terminal; rotating or revoking again fails.
	StatusRevoked Status = "revoked"
)

var (
	// ErrNotFound reports a lookup that matched no row.
	ErrNotFound = errors.New("refresh token not found")
	// ErrNothingWasChanged reports a conditional update whose predicate
	// matched no row: the row vanished or was already transitioned by a
	// concurrent caller. A precondition failure, not an I/O fault.
	ErrNothingWasChanged = errors.New("nothing was changed")
)

// Entity is one persisted refresh-token row.
type Entity struct {
	ID        string
	UserID    uint64
	UserRole  string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Status    Status
}

// New is the construction request for a row; the store assigns the ID and
// sets the status to Active.
type New struct {
	UserID    uint64
	UserRole  string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Prolong extends a row's validity without rotation.
type Prolong struct {
	ID        string
	ExpiresAt time.Time
}

// Store is the refresh-token persistence contract consumed by the token
// service. Implementations must guarantee at most one successful status
// transition per row under concurrency.
type Store interface {
	// Insert creates a row with status Active and returns it.
	Insert(ctx context.Context, n New) (Entity, error)

	// SelectByID returns the row with the given id, or ErrNotFound.
	SelectByID(ctx context.Context, id string) (Entity, error)

	// SelectByToken returns the row holding the given token string, or
	// ErrNotFound. Token strings are unique.
	SelectByToken(ctx context.Context, token string) (Entity, error)

	// Revoke conditionally flips an Active row to Revoked and returns the
	// updated row. A row that is absent or no longer Active yields
	// ErrNothingWasChanged.
	Revoke(ctx context.Context, id string) (Entity, error)

	// Prolong conditionally updates expiresAt only; status is untouched.
	// An absent row yields ErrNothingWasChanged.
	Prolong(ctx context.Context, p Prolong) (Entity, error)

	// Rotate atomically revokes the Active row oldID and inserts its
	// replacement in one transaction. If the conditional revoke matches no
	// row the whole rotation fails with ErrNothingWasChanged and nothing is
	// inserted.
	Rotate(ctx context.Context, oldID string, n New) (Entity, error)

	// RevokeExpired flips every Active row with expiresAt <= now to Revoked
	// and returns the affected rows. Running it again immediately yields an
	// empty result: already-revoked rows are no longer targeted.
	RevokeExpired(ctx context.Context, now time.Time) ([]Entity, error)

	// Delete hard-deletes a row, yielding ErrNothingWasChanged if absent.
	Delete(ctx context.Context, id string) error

	// DeleteExpiredFor hard-deletes rows that have been expired for at
	// least retention and returns them. A data-retention sweep, distinct
	// from the soft-revoke sweep.
	DeleteExpiredFor(ctx context.Context, now time.Time, retention time.Duration) ([]Entity, error)
}
