package main

import (
	"errors"
	"fmt"
)

// Sentinel errors returned across component boundaries. Handlers map these
// to HTTP statuses; anything wrapped as ErrInternal carries detail for the
// log only and is never echoed to the client.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRefreshRejected    = errors.New("refresh token revoked or invalid")
	ErrNotFound           = errors.New("not found")
	ErrInternal           = errors.New("internal error")

	// Token verification failures. Callers branch on expiry specifically
	// (refresh-on-expiry UX) versus outright invalidity.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

func wrapInternal(err error, op string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
