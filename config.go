package authkit

import (
	"errors"
	"time"
)

// TokenConfig controls claim contents and signing of issued tokens.
type TokenConfig struct {
	// Issuer is placed in the iss claim of every issued token.
	Issuer string

	// Audience is the base audience of every issued token. Request
	// context may append to it, see WithRemoteHost.
	Audience []string

	// SigningMethod selects the HMAC variant: "hs256" or "hs512".
	SigningMethod string

	// Secret is the HMAC signing key. At least 32 bytes.
	Secret []byte

	// AccessTTL is the access token lifetime.
	AccessTTL time.Duration

	// RefreshTTL is the refresh token lifetime.
	RefreshTTL time.Duration
}

// CacheConfig controls the advisory access-token cache.
type CacheConfig struct {
	// Enabled turns the cache on. When no explicit cache is supplied
	// to the builder an in-memory LRU is used.
	Enabled bool

	// MaxBytes bounds the in-memory cache by approximate memory use.
	MaxBytes int

	// RedisPrefix namespaces keys when a Redis cache is built.
	RedisPrefix string
}

// SweepConfig controls background expiry maintenance.
type SweepConfig struct {
	// Interval between sweeper runs. Zero disables the sweeper.
	Interval time.Duration

	// Retention is how long revoked and expired rows are kept before
	// the sweeper deletes them.
	Retention time.Duration
}

// AuditConfig controls the audit event pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull drops events instead of blocking the caller when the
	// dispatch buffer is full. Dropped events are counted.
	DropIfFull bool
}

// MetricsConfig controls in-process metrics collection.
type MetricsConfig struct {
	Enabled bool

	// EnableLatencyHistograms additionally records verification
	// latency buckets.
	EnableLatencyHistograms bool
}

// Config is the complete service configuration. Start from
// DefaultConfig and override what you need.
type Config struct {
	Token   TokenConfig
	Cache   CacheConfig
	Sweep   SweepConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// DefaultConfig returns a configuration with working defaults for
// everything except Token.Issuer, Token.Audience and Token.Secret,
// which the caller must set.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: "hs256",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    720 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled:     true,
			MaxBytes:    1 << 20,
			RedisPrefix: "ak",
		},
		Sweep: SweepConfig{
			Interval:  time.Hour,
			Retention: 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Token.Issuer == "" {
		return errors.New("Token Issuer must not be empty")
	}
	if len(c.Token.Audience) == 0 {
		return errors.New("Token Audience must not be empty")
	}
	for _, aud := range c.Token.Audience {
		if aud == "" {
			return errors.New("Token Audience entries must not be empty")
		}
	}
	switch c.Token.SigningMethod {
	case "hs256", "hs512":
	default:
		return errors.New("Token SigningMethod must be hs256 or hs512")
	}
	if len(c.Token.Secret) < 32 {
		return errors.New("Token Secret must be at least 32 bytes")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must be >= AccessTTL")
	}
	if c.Cache.Enabled && c.Cache.MaxBytes <= 0 {
		return errors.New("Cache MaxBytes must be > 0 when the cache is enabled")
	}
	if c.Sweep.Interval < 0 {
		return errors.New("Sweep Interval must be >= 0")
	}
	if c.Sweep.Retention < 0 {
		return errors.New("Sweep Retention must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneConfig(c Config) Config {
	c.Token.Secret = cloneBytes(c.Token.Secret)
	c.Token.Audience = cloneStrings(c.Token.Audience)
	return c
}
