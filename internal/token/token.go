// Package token issues and verifies the access/refresh JWT pair. The two
// token kinds are signed with distinct HS256 secrets; a token presented to
// the wrong verifier fails on signature alone, and the type claim is checked
// as well so a refresh token can never pass as an access token under a
// shared secret misconfiguration.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken covers bad signature, expiry, and type mismatch alike.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload carried by both token kinds.
type Claims struct {
	UserID    int64  `json:"userId,string"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Pair bundles a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints and verifies token pairs for user IDs.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer builds an Issuer from the two signing secrets and TTLs.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssuePair mints a new access/refresh pair for the user.
func (i *Issuer) IssuePair(userID int64) (Pair, error) {
	access, err := i.sign(userID, TypeAccess, i.accessSecret, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(userID, TypeRefresh, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return i.verify(tokenString, TypeAccess, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims. Note that
// a verified refresh token is not sufficient for rotation: the caller must
// still compare it against the value persisted on the user, which is how a
// superseded-but-unexpired token gets rejected.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return i.verify(tokenString, TypeRefresh, i.refreshSecret)
}

func (i *Issuer) sign(userID int64, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) verify(tokenString, wantType string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
