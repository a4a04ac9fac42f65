package authkit

import (
	"context"
	"errors"

	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

const (
	auditEventTokenIssued       = "token_issued"
	auditEventTokenIssueFailure = "token_issue_failure"
	auditEventVerifyFailure     = "verify_failure"
	auditEventRefreshSuccess    = "refresh_success"
	auditEventRefreshInvalid    = "refresh_invalid"
	auditEventRefreshReuse      = "refresh_reuse_detected"
	auditEventTokenRevoked      = "token_revoked"
	auditEventRevokeInvalid     = "revoke_invalid"
	auditEventProlong           = "prolong"
	auditEventSweepRevoked      = "sweep_revoked"
	auditEventSweepDeleted      = "sweep_deleted"
	auditEventSweepFailure      = "sweep_failure"
)

func (s *Service) emitAudit(ctx context.Context, eventType string, success bool, userID UserID, tokenID string, err error, metadata map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.dispatch(AuditEvent{
		EventType: eventType,
		Timestamp: s.clock.Now(),
		Success:   success,
		UserID:    userID,
		TokenID:   tokenID,
		ClientIP:  clientIPFromContext(ctx),
		ErrorCode: auditErrorCode(err),
		Metadata:  metadata,
	})
}

// auditErrorCode collapses an error chain into a short stable code
// suitable for aggregation. Raw error text never enters audit events.
func auditErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, token.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, token.ErrTokenVerification):
		return "token_verification"
	case errors.Is(err, token.ErrMalformedSubject):
		return "malformed_subject"
	case errors.Is(err, token.ErrClaimsExtraction):
		return "claims_extraction"
	case errors.Is(err, token.ErrTokenGeneration):
		return "token_generation"
	case errors.Is(err, ErrUnexpectedTokenUse):
		return "unexpected_token_use"
	case errors.Is(err, ErrUnknownToken):
		return "unknown_token"
	case errors.Is(err, ErrInvalidRefreshTokenStatus):
		return "invalid_refresh_token_status"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrNothingWasChanged):
		return "nothing_changed"
	default:
		return "internal"
	}
}
