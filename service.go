package authkit

import (
	"context"
	"log"
	"time"

	"github.com/pavelzhurov/authkit/cache"
	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

// Service issues, verifies, refreshes and revokes token pairs. Build
// one with New; all methods are safe for concurrent use.
type Service struct {
	cfg     Config
	tokens  *token.Manager
	store   store.Store
	cache   cache.Cache
	clock   Clock
	metrics *metricsCollector
	audit   *auditDispatcher
	sweeper *sweeper
}

// Close stops the background sweeper and drains the audit pipeline.
// The service must not be used after Close.
func (s *Service) Close() {
	if s.sweeper != nil {
		s.sweeper.stop()
	}
	if s.audit != nil {
		s.audit.close()
	}
}

// AuditDropped reports how many audit events were dropped because the
// dispatch buffer was full.
func (s *Service) AuditDropped() uint64 {
	if s.audit == nil {
		return 0
	}
	return s.audit.droppedCount()
}

// MetricsSnapshot returns a point-in-time copy of all collected
// metrics. Counters are zero when metrics are disabled.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.snapshot()
}

func (s *Service) metricInc(id MetricID) {
	s.metrics.inc(id)
}

func (s *Service) observeVerify(start time.Time) {
	s.metrics.observeVerify(s.clock.Now().Sub(start))
}

// The cache is advisory: a failing cache degrades performance, never
// correctness, so errors are logged and swallowed.

func (s *Service) cachePut(ctx context.Context, tok string, id cache.Identity) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, tok, id); err != nil {
		log.Printf("authkit: cache put failed: %v", err)
	}
}

func (s *Service) cacheGet(ctx context.Context, tok string) (cache.Identity, bool) {
	if s.cache == nil {
		return cache.Identity{}, false
	}
	id, ok, err := s.cache.Get(ctx, tok)
	if err != nil {
		log.Printf("authkit: cache get failed: %v", err)
		return cache.Identity{}, false
	}
	return id, ok
}

func (s *Service) cacheRevoke(ctx context.Context, tok string) {
	if s.cache == nil {
		return
	}
	if _, _, err := s.cache.Revoke(ctx, tok); err != nil {
		log.Printf("authkit: cache revoke failed: %v", err)
	}
}
