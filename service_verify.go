package authkit

import (
	"context"

	"github.com/pavelzhurov/authkit/cache"
	"github.com/pavelzhurov/authkit/token"
)

// Verify authenticates an access token and returns the identity it
// carries. A cache hit skips signature verification entirely; on a
// miss the token is fully verified and the result written back so
// subsequent calls hit. Failed verifications are never cached.
func (s *Service) Verify(ctx context.Context, access AccessToken) (AuthContext, error) {
	start := s.clock.Now()
	defer s.observeVerify(start)

	if id, ok := s.cacheGet(ctx, string(access)); ok {
		s.metricInc(MetricVerifyCacheHit)
		return AuthContext{UserID: UserID(id.UserID), Role: id.Role}, nil
	}
	s.metricInc(MetricVerifyCacheMiss)

	claims, err := s.tokens.Extract(string(access))
	if err != nil {
		return AuthContext{}, s.failVerify(ctx, err)
	}
	if claims.Use != token.UseAccess {
		return AuthContext{}, s.failVerify(ctx, ErrUnexpectedTokenUse)
	}
	uid, err := claims.UserID()
	if err != nil {
		return AuthContext{}, s.failVerify(ctx, err)
	}

	s.cachePut(ctx, string(access), cache.Identity{UserID: uid, Role: claims.Role})

	return AuthContext{UserID: UserID(uid), Role: claims.Role}, nil
}

func (s *Service) failVerify(ctx context.Context, err error) error {
	s.metricInc(MetricVerifyFailure)
	s.emitAudit(ctx, auditEventVerifyFailure, false, 0, "", err, nil)
	return err
}
