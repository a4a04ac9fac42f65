package authkit

import (
	"time"
)

// UserID is the numeric identifier a token subject encodes.
type UserID uint64

// AccessToken is a signed, short-lived credential verified on every
// protected request.
type AccessToken string

// RefreshToken is the signed, longer-lived credential exchanged for a new
// pair; it is persisted and revocable.
type RefreshToken string

// TokenPair bundles the credentials returned by [Service.Generate] and
// [Service.Refresh].
type TokenPair struct {
	Access  AccessToken
	Refresh RefreshToken
}

// AuthContext is the authenticated identity produced by a successful
// verification: the user id parsed from the subject and the role snapshot
// taken at issuance.
type AuthContext struct {
	UserID UserID
	Role   string
}

// Clock supplies the current time. Injectable for testability; all issued
// timestamps are rounded to whole seconds, because sub-second precision
// does not survive the signed-claim encoding.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a [Clock] backed by time.Now.
func SystemClock() Clock { return systemClock{} }
