package authkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pavelzhurov/authkit/cache"
	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

// Refresh rotates a refresh token: the presented token's row is
// revoked and a fresh pair is issued in one store transaction, so
// concurrent refreshes of the same token have exactly one winner.
// Presenting a token whose row is already revoked is treated as reuse
// and fails with ErrInvalidRefreshTokenStatus.
func (s *Service) Refresh(ctx context.Context, refresh RefreshToken) (TokenPair, error) {
	claims, err := s.tokens.Extract(string(refresh))
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, 0, "", err)
	}
	if claims.Use != token.UseRefresh {
		return TokenPair{}, s.failRefresh(ctx, 0, "", ErrUnexpectedTokenUse)
	}

	ent, err := s.store.SelectByToken(ctx, string(refresh))
	if errors.Is(err, store.ErrNotFound) {
		return TokenPair{}, s.failRefresh(ctx, 0, "", ErrUnknownToken)
	}
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, 0, "", err)
	}
	if ent.Status != store.StatusActive {
		return TokenPair{}, s.reuseDetected(ctx, ent)
	}

	now := s.clock.Now().Truncate(time.Second)
	audience := cloneStrings(s.cfg.Token.Audience)
	if host, ok := remoteHostFromContext(ctx); ok {
		audience = append(audience, host)
	}

	accessClaims, err := token.NewClaims(s.cfg.Token.Issuer, claims.Subject, audience,
		token.UseAccess, ent.UserRole, now, s.cfg.Token.AccessTTL)
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, UserID(ent.UserID), ent.ID, err)
	}
	refreshClaims, err := token.NewClaims(s.cfg.Token.Issuer, claims.Subject, audience,
		token.UseRefresh, ent.UserRole, now, s.cfg.Token.RefreshTTL)
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, UserID(ent.UserID), ent.ID, err)
	}

	access, err := s.tokens.Generate(accessClaims)
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, UserID(ent.UserID), ent.ID, err)
	}
	newRefresh, err := s.tokens.Generate(refreshClaims)
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, UserID(ent.UserID), ent.ID, err)
	}

	newEnt, err := s.store.Rotate(ctx, ent.ID, store.New{
		UserID:    ent.UserID,
		UserRole:  ent.UserRole,
		Token:     newRefresh,
		IssuedAt:  now,
		ExpiresAt: refreshClaims.ExpiresAt,
	})
	if errors.Is(err, store.ErrNothingWasChanged) {
		// Lost the rotation race: a concurrent refresh already consumed
		// this token.
		return TokenPair{}, s.reuseDetected(ctx, ent)
	}
	if err != nil {
		return TokenPair{}, s.failRefresh(ctx, UserID(ent.UserID), ent.ID,
			fmt.Errorf("%w: %v", token.ErrTokenGeneration, err))
	}

	s.cachePut(ctx, access, cache.Identity{UserID: ent.UserID, Role: ent.UserRole})

	s.metricInc(MetricRefreshSuccess)
	s.emitAudit(ctx, auditEventRefreshSuccess, true, UserID(ent.UserID), newEnt.ID, nil,
		map[string]string{"rotated_from": ent.ID})

	return TokenPair{Access: AccessToken(access), Refresh: RefreshToken(newRefresh)}, nil
}

// Revoke permanently invalidates a refresh token and returns the
// revoked token value. The transition is one-way; revoking an already
// revoked token fails with ErrInvalidRefreshTokenStatus.
func (s *Service) Revoke(ctx context.Context, refresh RefreshToken) (RefreshToken, error) {
	claims, err := s.tokens.Extract(string(refresh))
	if err != nil {
		return "", s.failRevoke(ctx, 0, "", err)
	}
	if claims.Use != token.UseRefresh {
		return "", s.failRevoke(ctx, 0, "", ErrUnexpectedTokenUse)
	}

	ent, err := s.store.SelectByToken(ctx, string(refresh))
	if errors.Is(err, store.ErrNotFound) {
		return "", s.failRevoke(ctx, 0, "", ErrUnknownToken)
	}
	if err != nil {
		return "", s.failRevoke(ctx, 0, "", err)
	}

	revoked, err := s.store.Revoke(ctx, ent.ID)
	if errors.Is(err, store.ErrNothingWasChanged) {
		return "", s.failRevoke(ctx, UserID(ent.UserID), ent.ID, ErrInvalidRefreshTokenStatus)
	}
	if err != nil {
		return "", s.failRevoke(ctx, UserID(ent.UserID), ent.ID, err)
	}

	s.metricInc(MetricRevokeSuccess)
	s.emitAudit(ctx, auditEventTokenRevoked, true, UserID(revoked.UserID), revoked.ID, nil, nil)

	return RefreshToken(revoked.Token), nil
}

func (s *Service) failRefresh(ctx context.Context, userID UserID, tokenID string, err error) error {
	s.metricInc(MetricRefreshFailure)
	s.emitAudit(ctx, auditEventRefreshInvalid, false, userID, tokenID, err, nil)
	return err
}

func (s *Service) reuseDetected(ctx context.Context, ent store.Entity) error {
	s.metricInc(MetricRefreshFailure)
	s.metricInc(MetricRefreshReuseDetected)
	s.emitAudit(ctx, auditEventRefreshReuse, false, UserID(ent.UserID), ent.ID,
		ErrInvalidRefreshTokenStatus, nil)
	return ErrInvalidRefreshTokenStatus
}

func (s *Service) failRevoke(ctx context.Context, userID UserID, tokenID string, err error) error {
	s.metricInc(MetricRevokeFailure)
	s.emitAudit(ctx, auditEventRevokeInvalid, false, userID, tokenID, err, nil)
	return err
}
