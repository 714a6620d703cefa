// ABOUTME: HTTP middleware enforcing bearer API-key authentication.
// ABOUTME: Compares the presented token against the configured shared secret.

package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// KeySource provides the current API key. The gateway server implements
// this so live key updates take effect on the next request.
type KeySource interface {
	APIKey() string
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Middleware creates an HTTP middleware that rejects requests whose bearer
// token does not match the configured API key. OPTIONS preflight requests
// pass through unauthenticated; the CORS layer answers them.
func Middleware(keys KeySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeAuthError(w, errMsg)
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(keys.APIKey())) != 1 {
				writeAuthError(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
