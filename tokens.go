package main

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by both token categories: identity only,
// never secrets or password material.
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the two bearer-token categories. Access and
// refresh tokens use distinct secrets, so a token presented against the
// wrong context fails signature verification.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenCodec(cfg *Config) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

func (tc *TokenCodec) IssueAccess(userID uint, username string) (string, error) {
	token, _, err := tc.issue(userID, username, tc.accessSecret, tc.accessTTL)
	return token, err
}

// IssueRefresh also returns the expiry so the caller can whitelist the
// token with the same deadline the signature carries.
func (tc *TokenCodec) IssueRefresh(userID uint, username string) (string, time.Time, error) {
	return tc.issue(userID, username, tc.refreshSecret, tc.refreshTTL)
}

func (tc *TokenCodec) issue(userID uint, username string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			// unique jti: two tokens for the same identity are never
			// byte-identical, so rotation always yields a new token value
			ID: uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (tc *TokenCodec) VerifyAccess(raw string) (*Claims, error) {
	return tc.verify(raw, tc.accessSecret)
}

func (tc *TokenCodec) VerifyRefresh(raw string) (*Claims, error) {
	return tc.verify(raw, tc.refreshSecret)
}

func (tc *TokenCodec) verify(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
