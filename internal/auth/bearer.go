package auth

import (
	"net/http"
	"strings"
)

// BearerToken достаёт токен из заголовка "Authorization: Bearer <token>"
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
