package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pavelzhurov/authkit/validate"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret: testSecret,
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func validTestClaims(t *testing.T, now time.Time, use Use) Claims {
	t.Helper()
	c, err := NewClaims("authkit", "42", []string{"host-1", "host-2"}, use, "admin", now, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewClaims failed: %v", err)
	}
	return c
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewManager(Config{Secret: []byte("short")}); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestNewManagerRejectsUnknownMethod(t *testing.T) {
	if _, err := NewManager(Config{Method: "rs256", Secret: testSecret}); err == nil {
		t.Fatalf("expected unknown method to be rejected")
	}
}

func TestRoundTripIdentity(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)
	claims := validTestClaims(t, now, UseAccess)

	signed, err := m.Generate(claims)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	got, err := m.Extract(signed)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !got.Equal(claims) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, claims)
	}
}

func TestRoundTripHS512(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m, err := NewManager(Config{
		Method: MethodHS512,
		Secret: testSecret,
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	claims := validTestClaims(t, now, UseRefresh)

	signed, err := m.Generate(claims)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	got, err := m.Extract(signed)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !got.Equal(claims) {
		t.Fatalf("round trip mismatch")
	}
}

func TestExpiredTokenSurfacesTokenExpired(t *testing.T) {
	issued := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m := newTestManager(t, issued.Add(time.Hour))
	claims := validTestClaims(t, issued, UseAccess)

	signed, err := m.Generate(claims)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = m.Extract(signed)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestExpiryAtBoundaryIsExpired(t *testing.T) {
	issued := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	claims := validTestClaims(t, issued, UseAccess)
	// now == expiresAt: strictly-greater-than rule makes this expired.
	m := newTestManager(t, claims.ExpiresAt)

	signed, err := m.Generate(claims)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Extract(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at boundary, got %v", err)
	}
}

func TestWrongSecretFailsVerificationOnly(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)

	other, err := NewManager(Config{
		Secret: []byte("ffffffffffffffffffffffffffffffff"),
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := other.Generate(validTestClaims(t, now, UseAccess))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = m.Extract(signed)
	if !errors.Is(err, ErrTokenVerification) {
		t.Fatalf("expected ErrTokenVerification, got %v", err)
	}
	// Structural validation must never run on an unverified token.
	if errors.Is(err, ErrMissingIssuer) || errors.Is(err, ErrMissingRole) {
		t.Fatalf("structural errors leaked past signature verification: %v", err)
	}
}

func TestGarbageTokenFailsVerification(t *testing.T) {
	m := newTestManager(t, time.Now())
	if _, err := m.Extract("not.a.token"); !errors.Is(err, ErrTokenVerification) {
		t.Fatalf("expected ErrTokenVerification, got %v", err)
	}
}

// signRaw signs an arbitrary claim map with the shared test secret, letting
// tests craft structurally broken but cryptographically valid tokens.
func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing raw claims failed: %v", err)
	}
	return signed
}

func TestMissingClaimsAccumulateOnePerClaim(t *testing.T) {
	m := newTestManager(t, time.Now())

	// Only subject and exp present: issuer, audience, use, role and iat are
	// each expected to contribute exactly one error.
	signed := signRaw(t, jwt.MapClaims{
		"sub": "42",
		"exp": float64(time.Now().Add(time.Hour).Unix()),
	})

	_, err := m.Extract(signed)
	if err == nil {
		t.Fatalf("expected structural validation to fail")
	}

	var errs validate.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected accumulated validate.Errors, got %T: %v", err, err)
	}
	if len(errs) != 5 {
		t.Fatalf("expected 5 structural errors, got %d: %v", len(errs), errs)
	}

	for _, want := range []error{
		ErrMissingIssuer,
		ErrMalformedAudience,
		ErrUnknownUse,
		ErrMissingRole,
		ErrMissingIssuedAt,
	} {
		if !errors.Is(err, want) {
			t.Fatalf("missing expected error %v in %v", want, errs)
		}
	}
	if errors.Is(err, ErrMissingSubject) || errors.Is(err, ErrMissingExpiresAt) {
		t.Fatalf("present claims must not be reported: %v", errs)
	}
}

func TestAudienceMustDecodeToNonEmptyList(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)

	for name, aud := range map[string]interface{}{
		"not a string":   7,
		"not json":       "host-1",
		"empty list":     "[]",
		"list of number": "[1,2]",
	} {
		signed := signRaw(t, jwt.MapClaims{
			"iss":  "authkit",
			"sub":  "42",
			"aud":  aud,
			"use":  "access",
			"role": "admin",
			"iat":  float64(now.Unix()),
			"exp":  float64(now.Add(time.Hour).Unix()),
		})
		if _, err := m.Extract(signed); !errors.Is(err, ErrMalformedAudience) {
			t.Fatalf("%s: expected ErrMalformedAudience, got %v", name, err)
		}
	}
}

func TestUnknownUseRejected(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)

	signed := signRaw(t, jwt.MapClaims{
		"iss":  "authkit",
		"sub":  "42",
		"aud":  `["host-1"]`,
		"use":  "session",
		"role": "admin",
		"iat":  float64(now.Unix()),
		"exp":  float64(now.Add(time.Hour).Unix()),
	})

	if _, err := m.Extract(signed); !errors.Is(err, ErrUnknownUse) {
		t.Fatalf("expected ErrUnknownUse, got %v", err)
	}
}

func TestNonNumericSubjectSurfacesMalformedSubject(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)

	signed := signRaw(t, jwt.MapClaims{
		"iss":  "authkit",
		"sub":  "alice",
		"aud":  `["host-1"]`,
		"use":  "access",
		"role": "admin",
		"iat":  float64(now.Unix()),
		"exp":  float64(now.Add(time.Hour).Unix()),
	})

	if _, err := m.Extract(signed); !errors.Is(err, ErrMalformedSubject) {
		t.Fatalf("expected ErrMalformedSubject, got %v", err)
	}
}

func TestSemanticFailuresAccumulate(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)

	// Non-numeric subject and already expired: both must be reported.
	signed := signRaw(t, jwt.MapClaims{
		"iss":  "authkit",
		"sub":  "alice",
		"aud":  `["host-1"]`,
		"use":  "access",
		"role": "admin",
		"iat":  float64(now.Add(-2 * time.Hour).Unix()),
		"exp":  float64(now.Add(-time.Hour).Unix()),
	})

	_, err := m.Extract(signed)
	if !errors.Is(err, ErrMalformedSubject) {
		t.Fatalf("expected ErrMalformedSubject, got %v", err)
	}
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired alongside, got %v", err)
	}
}

func TestRejectsForeignSigningAlgorithm(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestManager(t, now)

	// Signed with HS512 while the manager only accepts HS256.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"iss": "authkit",
		"sub": "42",
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := m.Extract(signed); !errors.Is(err, ErrTokenVerification) {
		t.Fatalf("expected ErrTokenVerification, got %v", err)
	}
}
