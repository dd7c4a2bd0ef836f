package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
)

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// Claims describes JWT payload. Session is the blob the identity resolver
// reads for the token's slot.
type Claims struct {
	Slot    domain.SessionSlot `json:"slot"`
	Session access.SessionData `json:"session"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a session token for slot.
func (tm *TokenManager) GenerateToken(slot domain.SessionSlot, session access.SessionData) (string, domain.Token, error) {
	issuedAt := tm.now()
	meta := domain.Token{
		ID:        uuid.NewString(),
		SubjectID: session.ID,
		Slot:      slot,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(tm.ttl),
	}
	claims := &Claims{
		Slot:    slot,
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        meta.ID,
			Subject:   session.ID,
			ExpiresAt: jwt.NewNumericDate(meta.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", domain.Token{}, err
	}
	return tokenString, meta, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Meta extracts the token metadata from parsed claims.
func (c *Claims) Meta() domain.Token {
	meta := domain.Token{ID: c.ID, SubjectID: c.Session.ID, Slot: c.Slot}
	if c.ExpiresAt != nil {
		meta.ExpiresAt = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		meta.IssuedAt = c.IssuedAt.Time
	}
	return meta
}
