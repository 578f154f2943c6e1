package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"codeberg.org/algopatterns/client/internal/logger"
)

// provides the bearer token attached to gateway requests
type TokenSource interface {
	Token() string
}

// TokenSource backed by a fixed token string (possibly empty for
// anonymous practice sessions)
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	if token != "" {
		warnIfExpired(token)
	}

	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token() string {
	return s.token
}

// decodes the token claims locally (no signature check - the server is the
// authority) and logs a warning when the token is already expired. A stale
// token never blocks a request; the server rejects it with a proper 401.
func warnIfExpired(token string) {
	parser := jwt.NewParser()

	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		logger.Warn("auth token is not a parseable JWT", "error", err)
		return
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		logger.Warn("auth token is expired, requests will be rejected",
			"expired_at", claims.ExpiresAt.Format(time.RFC3339),
		)
	}
}
