package helpers

import (
	"context"
	"encoding/json"
	"strings"

	"finitefield.org/toolfinder/internal/httpserver/middleware"
)

// BasePath returns the configured mount path of the UI.
func BasePath(ctx context.Context) string {
	return middleware.BasePathFromContext(ctx)
}

// Path joins suffix onto the base path.
func Path(ctx context.Context, suffix string) string {
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	base := BasePath(ctx)
	if base == "/" {
		return suffix
	}
	return base + suffix
}

// CSRFToken returns the token issued for the current request.
func CSRFToken(ctx context.Context) string {
	return middleware.CSRFTokenFromContext(ctx)
}

// HXHeaders returns the hx-headers JSON that carries the CSRF token on every
// htmx request from the page.
func HXHeaders(ctx context.Context) string {
	payload, err := json.Marshal(map[string]string{middleware.DefaultCSRFHeader: CSRFToken(ctx)})
	if err != nil {
		return "{}"
	}
	return string(payload)
}

// BuildURL appends rawQuery to path, dropping any query path already had.
func BuildURL(path, rawQuery string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
