package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pavelzhurov/authkit/validate"
)

// SigningMethod selects the HMAC variant used for signing and verification.
type SigningMethod string

const (
	// MethodHS256 is the default HMAC-SHA256 signing method.
	MethodHS256 SigningMethod = "hs256"
	// MethodHS512 selects HMAC-SHA512.
	MethodHS512 SigningMethod = "hs512"
)

// minSecretLen is the smallest shared secret accepted for HMAC signing.
const minSecretLen = 32

// Claim names used in the signed payload. The audience list is carried as a
// JSON-array-encoded string inside one claim: the custom-claim surface is
// scalar-only, so the list is flattened at the encoding boundary.
const (
	claimIssuer    = "iss"
	claimSubject   = "sub"
	claimAudience  = "aud"
	claimUse       = "use"
	claimRole      = "role"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// Config carries the signing parameters for a [Manager].
type Config struct {
	Method SigningMethod
	Secret []byte

	// Now supplies the current time for semantic expiry checks.
	// Defaults to time.Now.
	Now func() time.Time
}

// Manager signs [Claims] into compact token strings and extracts them back.
// A Manager is immutable after construction and safe for concurrent use.
type Manager struct {
	method SigningMethod
	secret []byte
	now    func() time.Time
}

// NewManager validates the configuration and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Method == "" {
		cfg.Method = MethodHS256
	}
	switch cfg.Method {
	case MethodHS256, MethodHS512:
	default:
		return nil, errors.New("unsupported signing method")
	}
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", minSecretLen)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Manager{
		method: cfg.Method,
		secret: secret,
		now:    cfg.Now,
	}, nil
}

// Generate serializes the claims and signs them with the shared secret.
// Signing failure wraps [ErrTokenGeneration].
func (m *Manager) Generate(c Claims) (string, error) {
	audEncoded, err := json.Marshal(c.Audience)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	claims := jwt.MapClaims{
		claimIssuer:    c.Issuer,
		claimSubject:   c.Subject,
		claimAudience:  string(audEncoded),
		claimUse:       c.Use.String(),
		claimRole:      c.Role,
		claimIssuedAt:  c.IssuedAt.Unix(),
		claimExpiresAt: c.ExpiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(m.signingMethod(), claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

// Extract decodes and signature-verifies tokenStr, then validates and
// converts its claim set.
//
// A cryptographic failure surfaces [ErrTokenVerification] and no further
// validation runs. Structural failures are accumulated, one error per
// missing or malformed claim. Semantic failures (non-numeric subject,
// expiry) are accumulated as well; expiry is reported only here, never by
// the underlying parser, so [ErrTokenExpired] behaves like any other
// accumulable validation failure.
func (m *Manager) Extract(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.signingMethod().Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenVerification, err)
	}

	raw, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenVerification
	}

	if err := validateStructure(raw); err != nil {
		return Claims{}, err
	}

	claims, err := toClaims(raw)
	if err != nil {
		return Claims{}, err
	}

	if err := m.validateSemantics(claims); err != nil {
		return claims, err
	}
	return claims, nil
}

func (m *Manager) signingMethod() jwt.SigningMethod {
	switch m.method {
	case MethodHS512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// validateStructure checks the raw claim map shape. Every check runs
// independently so a caller sees all defects of a malformed token at once.
func validateStructure(raw jwt.MapClaims) error {
	return validate.All(raw,
		hasStringClaim(claimIssuer, ErrMissingIssuer),
		hasStringClaim(claimSubject, ErrMissingSubject),
		checkAudienceClaim,
		checkUseClaim,
		hasStringClaim(claimRole, ErrMissingRole),
		hasNumericClaim(claimIssuedAt, ErrMissingIssuedAt),
		hasNumericClaim(claimExpiresAt, ErrMissingExpiresAt),
	)
}

func hasStringClaim(name string, sentinel error) validate.Check[jwt.MapClaims] {
	return func(raw jwt.MapClaims) error {
		s, ok := raw[name].(string)
		if !ok || s == "" {
			return sentinel
		}
		return nil
	}
}

func hasNumericClaim(name string, sentinel error) validate.Check[jwt.MapClaims] {
	return func(raw jwt.MapClaims) error {
		// JSON numbers decode as float64.
		if _, ok := raw[name].(float64); !ok {
			return sentinel
		}
		return nil
	}
}

func checkAudienceClaim(raw jwt.MapClaims) error {
	if _, err := decodeAudience(raw); err != nil {
		return err
	}
	return nil
}

func checkUseClaim(raw jwt.MapClaims) error {
	s, _ := raw[claimUse].(string)
	if _, ok := ParseUse(s); !ok {
		return ErrUnknownUse
	}
	return nil
}

func decodeAudience(raw jwt.MapClaims) ([]string, error) {
	encoded, ok := raw[claimAudience].(string)
	if !ok {
		return nil, ErrMalformedAudience
	}
	var audience []string
	if err := json.Unmarshal([]byte(encoded), &audience); err != nil || len(audience) == 0 {
		return nil, ErrMalformedAudience
	}
	return audience, nil
}

// toClaims converts the structurally validated claim map into typed Claims.
// Residual conversion failures wrap [ErrClaimsExtraction].
func toClaims(raw jwt.MapClaims) (Claims, error) {
	audience, err := decodeAudience(raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: audience", ErrClaimsExtraction)
	}

	use, ok := ParseUse(stringClaim(raw, claimUse))
	if !ok {
		return Claims{}, fmt.Errorf("%w: use", ErrClaimsExtraction)
	}

	iat, ok := raw[claimIssuedAt].(float64)
	if !ok {
		return Claims{}, fmt.Errorf("%w: issued-at", ErrClaimsExtraction)
	}
	exp, ok := raw[claimExpiresAt].(float64)
	if !ok {
		return Claims{}, fmt.Errorf("%w: expires-at", ErrClaimsExtraction)
	}

	return Claims{
		Issuer:    stringClaim(raw, claimIssuer),
		Subject:   stringClaim(raw, claimSubject),
		Audience:  audience,
		Use:       use,
		Role:      stringClaim(raw, claimRole),
		IssuedAt:  time.Unix(int64(iat), 0).UTC(),
		ExpiresAt: time.Unix(int64(exp), 0).UTC(),
	}, nil
}

func stringClaim(raw jwt.MapClaims, name string) string {
	s, _ := raw[name].(string)
	return s
}

// validateSemantics runs the business-rule checks on typed claims: the
// subject must encode a numeric user id, and the expiry must lie strictly
// in the future. Both checks accumulate.
func (m *Manager) validateSemantics(c Claims) error {
	now := m.now()
	return validate.All(c,
		func(c Claims) error {
			if _, err := c.UserID(); err != nil {
				return ErrMalformedSubject
			}
			return nil
		},
		func(c Claims) error {
			if !c.ExpiresAt.After(now) {
				return ErrTokenExpired
			}
			return nil
		},
	)
}
