package authkit

import (
	"context"
	"strconv"
	"time"

	"github.com/pavelzhurov/authkit/store"
)

// Prolong extends a stored refresh token's validity without rotating
// it. Only expiresAt changes; a revoked row keeps its status and is
// still extended, which matters for retention accounting, not for
// authentication.
func (s *Service) Prolong(ctx context.Context, id string, newExpiresAt time.Time) (store.Entity, error) {
	ent, err := s.store.Prolong(ctx, store.Prolong{ID: id, ExpiresAt: newExpiresAt})
	if err != nil {
		s.emitAudit(ctx, auditEventProlong, false, 0, id, err, nil)
		return store.Entity{}, err
	}
	s.emitAudit(ctx, auditEventProlong, true, UserID(ent.UserID), ent.ID, nil,
		map[string]string{"expires_at": ent.ExpiresAt.UTC().Format(time.RFC3339)})
	return ent, nil
}

// RevokeExpired soft-revokes every active refresh token whose expiry
// has passed and returns the affected rows. Idempotent: an immediate
// second call affects nothing.
func (s *Service) RevokeExpired(ctx context.Context) ([]store.Entity, error) {
	revoked, err := s.store.RevokeExpired(ctx, s.clock.Now())
	if err != nil {
		s.emitAudit(ctx, auditEventSweepFailure, false, 0, "", err, nil)
		return nil, err
	}
	for range revoked {
		s.metricInc(MetricSweepRevoked)
	}
	if len(revoked) > 0 {
		s.emitAudit(ctx, auditEventSweepRevoked, true, 0, "", nil,
			map[string]string{"count": strconv.Itoa(len(revoked))})
	}
	return revoked, nil
}

// DeleteExpiredFor hard-deletes refresh tokens that have been expired
// for at least retention and returns the removed rows.
func (s *Service) DeleteExpiredFor(ctx context.Context, retention time.Duration) ([]store.Entity, error) {
	deleted, err := s.store.DeleteExpiredFor(ctx, s.clock.Now(), retention)
	if err != nil {
		s.emitAudit(ctx, auditEventSweepFailure, false, 0, "", err, nil)
		return nil, err
	}
	for range deleted {
		s.metricInc(MetricSweepDeleted)
	}
	if len(deleted) > 0 {
		s.emitAudit(ctx, auditEventSweepDeleted, true, 0, "", nil,
			map[string]string{"count": strconv.Itoa(len(deleted))})
	}
	return deleted, nil
}
