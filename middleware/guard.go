package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pavelzhurov/authkit"
	"github.com/pavelzhurov/authkit/store"
	"github.com/pavelzhurov/authkit/token"
)

// Guard returns middleware that rejects requests without a valid
// bearer access token. On success the verified identity is attached to
// the request context.
func Guard(svc *authkit.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := authkit.WithClientIP(r.Context(), remoteIP(r))
			ac, err := svc.Verify(ctx, authkit.AccessToken(tok))
			if err != nil {
				http.Error(w, http.StatusText(StatusFor(err)), StatusFor(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(authkit.WithAuthContext(ctx, ac)))
		})
	}
}

// StatusFor maps the service error taxonomy to an HTTP status code.
// Token and lifecycle failures are authentication problems, absent
// rows are not-found, everything else is an internal fault.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, token.ErrTokenVerification),
		errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrClaimsExtraction),
		errors.Is(err, token.ErrMalformedSubject),
		errors.Is(err, authkit.ErrUnexpectedTokenUse),
		errors.Is(err, authkit.ErrUnknownToken),
		errors.Is(err, authkit.ErrInvalidRefreshTokenStatus):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrNothingWasChanged):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}

func remoteIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
