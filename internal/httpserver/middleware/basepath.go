package middleware

import (
	"context"
	"net/http"
	"strings"
)

type basePathKey struct{}

// MountPath records the path the UI is mounted under so that templates can
// build links that survive a reverse proxy prefix.
func MountPath(basePath string) func(http.Handler) http.Handler {
	base := NormalizeBasePath(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithBasePath(r.Context(), base)))
		})
	}
}

// WithBasePath stores base in ctx.
func WithBasePath(ctx context.Context, base string) context.Context {
	return context.WithValue(ctx, basePathKey{}, NormalizeBasePath(base))
}

// BasePathFromContext returns the mount path of the UI or "/" when unset.
func BasePathFromContext(ctx context.Context) string {
	if base, ok := ctx.Value(basePathKey{}).(string); ok && base != "" {
		return base
	}
	return "/"
}

// NormalizeBasePath returns base with a leading slash and no trailing slash;
// empty input yields "/".
func NormalizeBasePath(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base
}
