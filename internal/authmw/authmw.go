// Package authmw provides HTTP middleware for bearer token authentication.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerToken returns middleware that validates the Authorization header
// contains a Bearer token matching the expected value. Comparison uses
// constant-time equality to prevent timing side-channel attacks.
func BearerToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, "Bearer ") {
				unauthorized(w, "missing or malformed authorization header")
				return
			}

			got := []byte(auth[len("Bearer "):])

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// unauthorized writes a 401 using the same error envelope as the API.
func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + msg + `"}}`))
}
