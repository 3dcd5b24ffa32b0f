// internal/httpserver/auth.go
//
// Bearer credential check for the privileged /generate endpoint.
// Three forms are accepted, checked in order:
//   1. The raw shared secret (CRON_SECRET), compared in constant time.
//      This is what the cron scheduler sends.
//   2. A bcrypt hash match against GENERATE_TOKEN_HASH, for deployments
//      that keep only a hash of the operator token in the environment.
//   3. An HS256 JWT signed with CRON_SECRET carrying scope "generate",
//      so a scheduler can hold short-lived minted tokens instead of the
//      secret itself.
//
// A mismatch is rejected immediately with 401 and causes no side effects.

package httpserver

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// authConfig holds the server-side credentials for /generate.
type authConfig struct {
	secret    string // CRON_SECRET
	tokenHash string // optional bcrypt hash of an operator token
}

func authFromEnv() authConfig {
	return authConfig{
		secret:    getEnv("CRON_SECRET", ""),
		tokenHash: getEnv("GENERATE_TOKEN_HASH", ""),
	}
}

// requireGenerateAuth enforces a valid bearer credential.
func (s *Server) requireGenerateAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" || !s.auth.accepts(tok) {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a authConfig) accepts(tok string) bool {
	if a.secret != "" && subtle.ConstantTimeCompare([]byte(tok), []byte(a.secret)) == 1 {
		return true
	}
	if a.tokenHash != "" && bcrypt.CompareHashAndPassword([]byte(a.tokenHash), []byte(tok)) == nil {
		return true
	}
	if a.secret != "" && a.acceptsJWT(tok) {
		return true
	}
	return false
}

// acceptsJWT validates a minted HS256 token: signed with the secret,
// unexpired, scoped to generation.
func (a authConfig) acceptsJWT(tok string) bool {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !t.Valid {
		return false
	}
	scope, _ := claims["scope"].(string)
	return scope == "generate"
}

// MintGenerateToken signs a short-lived JWT accepted by /generate.
// Exposed for operators (and tests) that prefer expiring credentials.
func MintGenerateToken(secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"scope": "generate",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
