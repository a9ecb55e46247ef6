package authflow

import "context"

type intendedRouteContextKey struct{}
type clientIPContextKey struct{}

// WithIntendedRoute attaches the route the user originally asked for
// before being redirected to login. On successful authentication the
// controller signals navigation there instead of the dashboard.
func WithIntendedRoute(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, intendedRouteContextKey{}, path)
}

// WithClientIP attaches the caller's IP address to ctx for audit
// events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func intendedRouteFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	path, _ := ctx.Value(intendedRouteContextKey{}).(string)
	return path
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
