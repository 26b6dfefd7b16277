package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTSessionStore issues stateless HS256 tokens. Logout and account
// deletion are handled through a TokenRevoker so tokens can still be
// invalidated before they expire.
type JWTSessionStore struct {
	secret  []byte
	ttl     time.Duration
	revoker TokenRevoker
}

// NewJWTSessionStore builds a JWT session store. The revoker is
// required; without it logout would be a no-op.
func NewJWTSessionStore(secret string, ttl time.Duration, revoker TokenRevoker) (*JWTSessionStore, error) {
	if secret == "" {
		return nil, errors.New("store: jwt secret is empty")
	}
	if revoker == nil {
		return nil, errors.New("store: jwt session store needs a token revoker")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTSessionStore{secret: []byte(secret), ttl: ttl, revoker: revoker}, nil
}

// NewSession issues a signed token for the principal.
func (s *JWTSessionStore) NewSession(p Principal) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   encodePrincipal(p),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve verifies the token and returns its principal. Revoked
// tokens, and tokens issued before a subject-wide revocation, resolve
// to nothing.
func (s *JWTSessionStore) Resolve(token string) (Principal, bool, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, false, nil
	}
	p, err := decodePrincipal(claims.Subject)
	if err != nil {
		return Principal{}, false, nil
	}
	if _, revoked, err := s.revoker.RevokedAt(claims.ID); err != nil {
		return Principal{}, false, err
	} else if revoked {
		return Principal{}, false, nil
	}
	revokedAt, revoked, err := s.revoker.RevokedAt(claims.Subject)
	if err != nil {
		return Principal{}, false, err
	}
	if revoked && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(revokedAt) {
		return Principal{}, false, nil
	}
	return p, true, nil
}

// Delete revokes a single token until it would have expired.
func (s *JWTSessionStore) Delete(token string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}
	ttl := s.ttl
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.revoker.Revoke(claims.ID, ttl)
}

// DeleteAccountSessions revokes every token issued for the account up
// to now.
func (s *JWTSessionStore) DeleteAccountSessions(p Principal) error {
	return s.revoker.Revoke(encodePrincipal(p), s.ttl)
}
