package authkit

import (
	"errors"

	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

// The closed error set surfaced by [Service]. Token-layer and store-layer
// sentinels are re-exported so callers match with errors.Is against this
// package alone.
var (
	// ErrTokenVerification reports a malformed token or an invalid signature.
	ErrTokenVerification = token.ErrTokenVerification
	// ErrTokenGeneration reports a signing failure; an operational fault,
	// not attacker input.
	ErrTokenGeneration = token.ErrTokenGeneration
	// ErrTokenExpired reports a credential past its expiry.
	ErrTokenExpired = token.ErrTokenExpired
	// ErrMalformedSubject reports a subject claim that is not a numeric user id.
	ErrMalformedSubject = token.ErrMalformedSubject
	// ErrClaimsExtraction reports a claim set that could not be converted
	// after structural validation.
	ErrClaimsExtraction = token.ErrClaimsExtraction

	// ErrUnknownToken reports a cryptographically valid refresh token with
	// no corresponding persisted row (e.g. an already-deleted record).
	ErrUnknownToken = errors.New("unknown refresh token")
	// ErrInvalidRefreshTokenStatus reports a persisted refresh token that
	// is no longer Active. Reuse of a rotated or revoked token lands here;
	// treat it as a replay signal worth alerting on.
	ErrInvalidRefreshTokenStatus = errors.New("invalid refresh token status")
	// ErrUnexpectedTokenUse reports a token whose use claim does not match
	// the operation (a refresh token presented for verification, or vice
	// versa).
	ErrUnexpectedTokenUse = errors.New("unexpected token use")

	// ErrNothingWasChanged is the store's conditional-update miss,
	// re-exported for callers of [Service.Prolong].
	ErrNothingWasChanged = store.ErrNothingWasChanged
)
