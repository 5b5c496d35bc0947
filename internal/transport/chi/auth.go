package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

func keySet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, keys := range lists {
		for _, k := range keys {
			if k != "" {
				set[k] = struct{}{}
			}
		}
	}
	return set
}

// bearerToken extracts the token from the Authorization header and writes a
// 401 when it is missing or malformed.
func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "missing authorization header")
		return "", false
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(auth, bearerPrefix) {
		writeError(w, http.StatusUnauthorized,
			ErrorResponseCodeUnauthorized, "authorization header must use Bearer scheme")
		return "", false
	}
	return auth[len(bearerPrefix):], true
}

func matches(set map[string]struct{}, token string) bool {
	for k := range set {
		if subtle.ConstantTimeCompare([]byte(k), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// Admin keys are accepted too. If apiKeys is empty, authentication is
// disabled (pass-through).
func BearerAuthMiddleware(apiKeys, adminKeys []string) func(http.Handler) http.Handler {
	if len(keySet(apiKeys)) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	validKeys := keySet(apiKeys, adminKeys)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(w, r)
			if !ok {
				return
			}
			if !matches(validKeys, token) {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuthMiddleware guards the admin routes. With no admin keys configured
// every admin request is forbidden.
func AdminAuthMiddleware(adminKeys []string) func(http.Handler) http.Handler {
	validKeys := keySet(adminKeys)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(validKeys) == 0 {
				writeError(w, http.StatusForbidden, ErrorResponseCodeForbidden, "admin access is disabled")
				return
			}

			token, ok := bearerToken(w, r)
			if !ok {
				return
			}
			if !matches(validKeys, token) {
				writeError(w, http.StatusForbidden, ErrorResponseCodeForbidden, "admin key required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
