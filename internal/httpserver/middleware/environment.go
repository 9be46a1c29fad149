package middleware

import (
	"context"
	"net/http"
	"strings"
)

type environmentContextKey struct{}

// DefaultEnvironment labels requests when no environment is configured.
const DefaultEnvironment = "development"

// Environment attaches the deployment environment label to the request context
// so the page can expose it as data-environment.
func Environment(value string) func(http.Handler) http.Handler {
	label := strings.TrimSpace(value)
	if label == "" {
		label = DefaultEnvironment
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), environmentContextKey{}, label)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnvironmentFromContext returns the environment label registered for the
// current request.
func EnvironmentFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultEnvironment
	}
	if value, ok := ctx.Value(environmentContextKey{}).(string); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return DefaultEnvironment
}
