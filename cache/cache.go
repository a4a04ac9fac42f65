package cache

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable wraps transport failures of a remote cache backend.
	ErrUnavailable = errors.New("cache unavailable")
)

// Identity is the verified principal stored against an access token: the
// numeric user id and the role snapshot taken at issuance.
type Identity struct {
	UserID uint64
	Role   string
}

// Cache maps access-token strings to verified identities.
//
// Implementations synchronize internally; concurrent Put calls for the same
// token are last-write-wins, which is benign because cached values for one
// token are always equal.
type Cache interface {
	// Put stores the identity under token. Entries expire a fixed TTL after
	// the write, regardless of reads.
	Put(ctx context.Context, token string, id Identity) error

	// Get returns the identity cached under token, if present and unexpired.
	Get(ctx context.Context, token string) (Identity, bool, error)

	// Revoke removes the entry and returns the prior identity if one existed.
	Revoke(ctx context.Context, token string) (Identity, bool, error)
}
