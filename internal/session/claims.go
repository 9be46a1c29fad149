package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Subject extracts the "sub" claim of a bearer token for display. The token is
// not verified; the catalog API remains the only authority on its validity.
// Opaque or malformed tokens yield "".
func Subject(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
