package token

import (
	"strconv"
	"time"
)

// Use distinguishes access-purpose tokens from refresh-purpose tokens signed
// with the same key.
type Use string

const (
	// UseAccess marks a short-lived credential verified on every protected request.
	UseAccess Use = "access"
	// UseRefresh marks the longer-lived credential exchanged for a new pair.
	UseRefresh Use = "refresh"
)

// ParseUse maps a raw claim string onto a known [Use] value.
func ParseUse(raw string) (Use, bool) {
	switch Use(raw) {
	case UseAccess:
		return UseAccess, true
	case UseRefresh:
		return UseRefresh, true
	default:
		return "", false
	}
}

func (u Use) String() string {
	return string(u)
}

// Claims is the immutable assertion set embedded in a signed token.
// Timestamps carry second precision only; sub-second detail does not survive
// the claim encoding.
type Claims struct {
	Issuer    string
	Subject   string
	Audience  []string
	Use       Use
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewClaims builds a claim set whose expiry is derived as issuedAt + lasting.
// Both timestamps are truncated to whole seconds. The audience list must be
// non-empty and lasting must be positive.
func NewClaims(issuer, subject string, audience []string, use Use, role string, issuedAt time.Time, lasting time.Duration) (Claims, error) {
	if len(audience) == 0 {
		return Claims{}, ErrEmptyAudience
	}
	if lasting <= 0 {
		return Claims{}, ErrInvalidLifetime
	}

	issuedAt = issuedAt.UTC().Truncate(time.Second)

	aud := make([]string, len(audience))
	copy(aud, audience)

	return Claims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  aud,
		Use:       use,
		Role:      role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(lasting.Truncate(time.Second)),
	}, nil
}

// UserID parses the subject claim as a numeric user id.
func (c Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformedSubject
	}
	return id, nil
}

// Equal reports whether two claim sets are identical, comparing timestamps
// at second precision.
func (c Claims) Equal(other Claims) bool {
	if c.Issuer != other.Issuer ||
		c.Subject != other.Subject ||
		c.Use != other.Use ||
		c.Role != other.Role {
		return false
	}
	if !c.IssuedAt.Truncate(time.Second).Equal(other.IssuedAt.Truncate(time.Second)) {
		return false
	}
	if !c.ExpiresAt.Truncate(time.Second).Equal(other.ExpiresAt.Truncate(time.Second)) {
		return false
	}
	if len(c.Audience) != len(other.Audience) {
		return false
	}
	for i := range c.Audience {
		if c.Audience[i] != other.Audience[i] {
			return false
		}
	}
	return true
}
