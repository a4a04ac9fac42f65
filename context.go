package authkit

import "context"

type remoteHostKey struct{}

type clientIPKey struct{}

type authContextKey struct{}

// WithRemoteHost records the host a request arrived for. Generate
// appends it to the audience of the issued tokens, so tokens can be
// traced back to the endpoint that minted them.
func WithRemoteHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, remoteHostKey{}, host)
}

func remoteHostFromContext(ctx context.Context) (string, bool) {
	host, ok := ctx.Value(remoteHostKey{}).(string)
	return host, ok && host != ""
}

// WithClientIP records the caller's IP for audit events emitted while
// handling the request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// WithAuthContext attaches a verified identity to the context; the
// Guard middleware uses it after a successful Verify.
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthContextFromContext returns the identity placed on the request
// context by the Guard middleware.
func AuthContextFromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(AuthContext)
	return ac, ok
}
