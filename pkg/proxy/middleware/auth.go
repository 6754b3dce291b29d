package middleware

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"embacle-hq/embacle/pkg/proxy/types"
)

// APIKeyEnv is the environment variable holding the expected API key.
const APIKeyEnv = "EMBACLE_API_KEY"

// bearerPrefix is the required Authorization scheme.
const bearerPrefix = "Bearer "

// openPaths are reachable without authentication: health probes and
// metrics scrapers do not carry API keys.
var openPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Auth validates the bearer token against EMBACLE_API_KEY.
//
// The env var is read on every request so keys can be rotated without
// restarting the server. When it is unset or empty, all requests pass
// (localhost development mode). When set, requests must carry a
// matching "Authorization: Bearer <key>" header; /health and /metrics
// stay open either way.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv(APIKeyEnv)
		if expected == "" || openPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		switch {
		case header == "":
			writeAuthError(w, "Missing Authorization header")
		case !strings.HasPrefix(header, bearerPrefix):
			writeAuthError(w, "Authorization header must use Bearer scheme")
		case header[len(bearerPrefix):] != expected:
			writeAuthError(w, "Invalid API key")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// writeAuthError writes a 401 response in OpenAI error format.
func writeAuthError(w http.ResponseWriter, message string) {
	body := types.NewErrorResponse(types.ErrorTypeAuthentication, message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(body)
}
