package authkit

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/pavelzhurov/authkit/cache"
	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

// Builder assembles a Service. Obtain one from New, chain the With
// methods and finish with Build. A builder is single-use.
type Builder struct {
	cfg    Config
	cfgSet bool

	store store.Store
	cache cache.Cache
	redis *redis.Client
	clock Clock
	sink  AuditSink

	built bool
}

// New returns a builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cloneConfig(cfg)
	b.cfgSet = true
	return b
}

// WithStore sets the refresh-token store. Required.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithCache sets an explicit access-token cache, overriding both the
// Redis client and the built-in memory cache.
func (b *Builder) WithCache(c cache.Cache) *Builder {
	b.cache = c
	return b
}

// WithRedis backs the access-token cache with a Redis client instead
// of the in-memory LRU.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithClock overrides the time source, mainly for tests.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration, assembles the service and starts
// its background workers.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := b.cfg
	if !b.cfgSet {
		cfg = cloneConfig(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("a refresh-token store is required")
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock()
	}

	manager, err := token.NewManager(token.Config{
		Method: token.SigningMethod(cfg.Token.SigningMethod),
		Secret: cfg.Token.Secret,
		Now:    clock.Now,
	})
	if err != nil {
		return nil, err
	}

	tokenCache, err := b.buildCache(cfg, clock)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:    cfg,
		tokens: manager,
		store:  b.store,
		cache:  tokenCache,
		clock:  clock,
	}
	if cfg.Metrics.Enabled {
		svc.metrics = newMetricsCollector(cfg.Metrics.EnableLatencyHistograms)
	}
	if cfg.Audit.Enabled && b.sink != nil {
		svc.audit = newAuditDispatcher(b.sink, cfg.Audit.BufferSize, cfg.Audit.DropIfFull)
	}
	if cfg.Sweep.Interval > 0 {
		svc.sweeper = newSweeper(svc, cfg.Sweep.Interval, cfg.Sweep.Retention)
	}

	return svc, nil
}

func (b *Builder) buildCache(cfg Config, clock Clock) (cache.Cache, error) {
	if b.cache != nil {
		return b.cache, nil
	}
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if b.redis != nil {
		return cache.NewRedis(b.redis, cache.RedisConfig{
			Prefix: cfg.Cache.RedisPrefix,
			TTL:    cfg.Token.AccessTTL,
		})
	}
	return cache.NewMemory(cache.MemoryConfig{
		MaxBytes: cfg.Cache.MaxBytes,
		TTL:      cfg.Token.AccessTTL,
		Now:      clock.Now,
	})
}
