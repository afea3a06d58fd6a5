package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuth admits requests whose bearer token matches the bcrypt hash.
// An empty hash disables the wrapped routes entirely.
func AdminAuth(tokenHash string) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				writeError(w, http.StatusNotFound, "Not found")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": message})
}
