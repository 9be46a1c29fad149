package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/toolfinder/internal/observability"
)

// Unauthorized reasons, logged and exposed to the page script.
const (
	ReasonMissingToken = "missing_token"
)

// RequireAdmin gates admin routes on the presence of a bearer token in the
// session. The token is not validated here: the catalog API is the authority
// and rejects stale tokens on each call.
func RequireAdmin(loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || strings.TrimSpace(sess.Token()) == "" {
				observability.FromContext(r.Context()).Info("admin route without token",
					zap.String("reason", ReasonMissingToken))
				handleUnauthorized(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}
