package membergate

import "context"

type clientIPContextKey struct{}
type authMemberContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine records
// it on audit events for attribution; it plays no part in any decision.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithAuthMember attaches an authenticated identity to ctx. Used by
// middleware.Guard after a successful Authenticate.
func WithAuthMember(ctx context.Context, m *AuthMember) context.Context {
	return context.WithValue(ctx, authMemberContextKey{}, m)
}

// AuthMemberFromContext returns the identity stored by [WithAuthMember].
func AuthMemberFromContext(ctx context.Context) (*AuthMember, bool) {
	if ctx == nil {
		return nil, false
	}
	m, ok := ctx.Value(authMemberContextKey{}).(*AuthMember)
	return m, ok
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
