package authkit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pavelzhurov/authkit/cache"
	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

// Generate issues a fresh access/refresh pair for userID. The refresh
// token is persisted before the pair is returned; the access token is
// additionally placed in the cache so the first Verify is already a
// hit. Both tokens share one issuance instant.
func (s *Service) Generate(ctx context.Context, userID UserID, role string) (TokenPair, error) {
	now := s.clock.Now().Truncate(time.Second)
	subject := strconv.FormatUint(uint64(userID), 10)

	audience := cloneStrings(s.cfg.Token.Audience)
	if host, ok := remoteHostFromContext(ctx); ok {
		audience = append(audience, host)
	}

	accessClaims, err := token.NewClaims(s.cfg.Token.Issuer, subject, audience,
		token.UseAccess, role, now, s.cfg.Token.AccessTTL)
	if err != nil {
		return TokenPair{}, s.failGenerate(ctx, userID, err)
	}
	refreshClaims, err := token.NewClaims(s.cfg.Token.Issuer, subject, audience,
		token.UseRefresh, role, now, s.cfg.Token.RefreshTTL)
	if err != nil {
		return TokenPair{}, s.failGenerate(ctx, userID, err)
	}

	access, err := s.tokens.Generate(accessClaims)
	if err != nil {
		return TokenPair{}, s.failGenerate(ctx, userID, err)
	}
	refresh, err := s.tokens.Generate(refreshClaims)
	if err != nil {
		return TokenPair{}, s.failGenerate(ctx, userID, err)
	}

	ent, err := s.store.Insert(ctx, store.New{
		UserID:    uint64(userID),
		UserRole:  role,
		Token:     refresh,
		IssuedAt:  now,
		ExpiresAt: refreshClaims.ExpiresAt,
	})
	if err != nil {
		return TokenPair{}, s.failGenerate(ctx, userID,
			fmt.Errorf("%w: %v", token.ErrTokenGeneration, err))
	}

	s.cachePut(ctx, access, cache.Identity{UserID: uint64(userID), Role: role})

	s.metricInc(MetricGenerateSuccess)
	s.emitAudit(ctx, auditEventTokenIssued, true, userID, ent.ID, nil,
		map[string]string{"role": role})

	return TokenPair{Access: AccessToken(access), Refresh: RefreshToken(refresh)}, nil
}

func (s *Service) failGenerate(ctx context.Context, userID UserID, err error) error {
	s.metricInc(MetricGenerateFailure)
	s.emitAudit(ctx, auditEventTokenIssueFailure, false, userID, "", err, nil)
	return err
}
