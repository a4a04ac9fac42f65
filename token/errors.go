package token

import "errors"

var (
	// ErrTokenVerification reports a malformed token or an invalid signature.
	ErrTokenVerification = errors.New("token verification failed")
	// ErrTokenGeneration reports a signing failure (key or configuration fault).
	ErrTokenGeneration = errors.New("token generation failed")
	// ErrClaimsExtraction reports a claim set that survived structural
	// validation but still could not be converted into typed claims.
	ErrClaimsExtraction = errors.New("claims extraction failed")
	// ErrTokenExpired reports an expiresAt at or before the current time.
	ErrTokenExpired = errors.New("token expired")
	// ErrMalformedSubject reports a subject claim that does not encode a numeric user id.
	ErrMalformedSubject = errors.New("malformed subject claim")

	// ErrMissingIssuer reports an absent or empty issuer claim.
	ErrMissingIssuer = errors.New("missing issuer claim")
	// ErrMissingSubject reports an absent or empty subject claim.
	ErrMissingSubject = errors.New("missing subject claim")
	// ErrMalformedAudience reports an audience claim that is absent or does
	// not decode to a non-empty string list.
	ErrMalformedAudience = errors.New("malformed audience claim")
	// ErrUnknownUse reports a use claim outside the known access/refresh set.
	ErrUnknownUse = errors.New("unknown token use claim")
	// ErrMissingRole reports an absent or empty role claim.
	ErrMissingRole = errors.New("missing role claim")
	// ErrMissingIssuedAt reports an absent or non-numeric iat claim.
	ErrMissingIssuedAt = errors.New("missing issued-at claim")
	// ErrMissingExpiresAt reports an absent or non-numeric exp claim.
	ErrMissingExpiresAt = errors.New("missing expires-at claim")

	// ErrInvalidLifetime reports claims whose expiry does not lie strictly
	// after their issue time.
	ErrInvalidLifetime = errors.New("token lifetime must be positive")
	// ErrEmptyAudience reports a claims construction request without any
	// audience entry.
	ErrEmptyAudience = errors.New("audience must not be empty")
)
