package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisValueVersion tags the binary value layout so it can evolve without
// misreading stale entries.
const redisValueVersion = 1

// RedisConfig configures a [Redis] cache.
type RedisConfig struct {
	// Prefix namespaces the cache keys. Defaults to "ak".
	Prefix string
	// TTL is the entry lifetime enforced server-side by Redis.
	TTL time.Duration
}

// Redis caches verified identities in a Redis server. Keys are derived from
// the SHA-256 of the token so raw credentials never appear in the keyspace;
// values use a compact binary encoding with a leading version byte.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis validates cfg and returns a cache backed by client.
func NewRedis(client *redis.Client, cfg RedisConfig) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("cache TTL must be > 0")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ak"
	}

	return &Redis{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

// Put stores id under token with the configured TTL.
func (r *Redis) Put(ctx context.Context, token string, id Identity) error {
	if err := r.client.Set(ctx, r.key(token), encodeIdentity(id), r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the identity cached under token, if any.
func (r *Redis) Get(ctx context.Context, token string) (Identity, bool, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	id, err := decodeIdentity(raw)
	if err != nil {
		// An undecodable entry behaves like a miss; the caller falls back
		// to full verification and overwrites it.
		return Identity{}, false, nil
	}
	return id, true, nil
}

// Revoke removes the entry and returns the prior identity if one existed.
func (r *Redis) Revoke(ctx context.Context, token string) (Identity, bool, error) {
	raw, err := r.client.GetDel(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	id, err := decodeIdentity(raw)
	if err != nil {
		return Identity{}, false, nil
	}
	return id, true, nil
}

func (r *Redis) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + ":at:" + hex.EncodeToString(sum[:])
}

func encodeIdentity(id Identity) []byte {
	buf := make([]byte, 1+8+len(id.Role))
	buf[0] = redisValueVersion
	binary.BigEndian.PutUint64(buf[1:9], id.UserID)
	copy(buf[9:], id.Role)
	return buf
}

func decodeIdentity(raw []byte) (Identity, error) {
	if len(raw) < 9 || raw[0] != redisValueVersion {
		return Identity{}, errors.New("unknown cache value encoding")
	}
	return Identity{
		UserID: binary.BigEndian.Uint64(raw[1:9]),
		Role:   string(raw[9:]),
	}, nil
}
