package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sessions mints and verifies gateway session tokens. Tokens are HS256
// JWTs signed with the configured session secret; the external auth
// provider never sees them.
type Sessions struct {
	secret   []byte
	iss, aud string
	ttl      time.Duration
}

func NewSessions(secret, issuer, audience string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("auth: session secret is required")
	}
	return &Sessions{secret: []byte(secret), iss: issuer, aud: audience, ttl: ttl}, nil
}

func (s *Sessions) Mint(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": s.iss,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	if s.aud != "" {
		claims["aud"] = s.aud
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry, issuer and audience, returning the
// token's subject.
func (s *Sessions) Verify(tokenStr string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", errors.New("invalid token")
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	if s.iss != "" && claims["iss"] != s.iss {
		return "", errors.New("iss mismatch")
	}
	if s.aud != "" && claims["aud"] != s.aud {
		return "", errors.New("aud mismatch")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("missing subject")
	}
	return sub, nil
}
