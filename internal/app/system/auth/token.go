// internal/app/system/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of issued bearer tokens.
const DefaultTokenTTL = 12 * time.Hour

const issuer = "chapterhub"

// Claims are the bearer token claims.
type Claims struct {
	Name      string `json:"name,omitempty"`
	LoginID   string `json:"login_id,omitempty"`
	Role      string `json:"role"`
	ChapterID string `json:"chapter_id,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens for API clients.
type Tokens struct {
	key []byte
	now func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{key: []byte(secret), now: time.Now}
}

// Issue signs a token for u valid for ttl (DefaultTokenTTL when zero).
func (t *Tokens) Issue(u SessionUser, ttl time.Duration) (string, error) {
	if u.ID == "" || u.Role == "" {
		return "", errors.New("token needs a subject and a role")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := t.now()
	claims := Claims{
		Name:      u.Name,
		LoginID:   u.LoginID,
		Role:      u.Role,
		ChapterID: u.ChapterID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse verifies a token and returns its user.
func (t *Tokens) Parse(token string) (*SessionUser, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, errors.New("token missing subject or role")
	}
	return &SessionUser{
		ID:        claims.Subject,
		Name:      claims.Name,
		LoginID:   claims.LoginID,
		Role:      claims.Role,
		ChapterID: claims.ChapterID,
	}, nil
}
