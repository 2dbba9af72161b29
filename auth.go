package main

import (
	"context"
	"errors"
	"time"

	"github.com/polgussi23/BeerWrapped-api/models"

	"go.uber.org/zap"
)

// Auth is the session manager. It owns the whitelist invariants: every
// issued refresh token gets a row, rotation consumes the old row, logout
// deletes it. It keeps no state of its own; the store is the source of
// truth for revocation.
type Auth struct {
	store Store
	codec *TokenCodec
	cost  int
	log   *zap.Logger
}

func NewAuth(store Store, codec *TokenCodec, bcryptCost int, log *zap.Logger) *Auth {
	return &Auth{store: store, codec: codec, cost: bcryptCost, log: log}
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	UserID       uint
	StartDay     *time.Time
}

type RegisterResult struct {
	UserID       uint
	AccessToken  string
	RefreshToken string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Login returns the same ErrInvalidCredentials for an unknown username and
// a wrong password, so responses cannot be used to enumerate usernames.
func (a *Auth) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := a.store.UserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		a.log.Error("login: user lookup failed", zap.Error(err))
		return nil, wrapInternal(err, "login")
	}
	if !checkPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, err := a.codec.IssueAccess(user.ID, user.Username)
	if err != nil {
		a.log.Error("login: sign access token", zap.Error(err))
		return nil, wrapInternal(err, "login")
	}
	refresh, exp, err := a.codec.IssueRefresh(user.ID, user.Username)
	if err != nil {
		a.log.Error("login: sign refresh token", zap.Error(err))
		return nil, wrapInternal(err, "login")
	}
	if err := a.store.SaveRefreshToken(ctx, user.ID, refresh, exp); err != nil {
		a.log.Error("login: whitelist refresh token", zap.Error(err))
		return nil, wrapInternal(err, "login")
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		StartDay:     user.StartDay,
	}, nil
}

func (a *Auth) Register(ctx context.Context, username, password, email string) (*RegisterResult, error) {
	// pre-check both uniqueness constraints so the caller gets a precise
	// conflict; CreateUser still maps races on the DB constraints
	if _, err := a.store.UserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		a.log.Error("register: username lookup failed", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}
	if _, err := a.store.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		a.log.Error("register: email lookup failed", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}

	digest, err := hashPassword(password, a.cost)
	if err != nil {
		a.log.Error("register: hash password", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}
	user := models.User{Username: username, Email: email, PasswordHash: digest}
	if err := a.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		a.log.Error("register: create user", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}

	access, err := a.codec.IssueAccess(user.ID, user.Username)
	if err != nil {
		a.log.Error("register: sign access token", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}
	refresh, exp, err := a.codec.IssueRefresh(user.ID, user.Username)
	if err != nil {
		a.log.Error("register: sign refresh token", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}
	if err := a.store.SaveRefreshToken(ctx, user.ID, refresh, exp); err != nil {
		a.log.Error("register: whitelist refresh token", zap.Error(err))
		return nil, wrapInternal(err, "register")
	}

	a.log.Info("user registered", zap.Uint("user_id", user.ID))
	return &RegisterResult{UserID: user.ID, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh verifies the presented token cryptographically, then against the
// whitelist: a valid signature whose row is gone means a prior logout or
// rotation already consumed it. On success the old token is rotated out and
// a fresh single-use refresh token takes its place.
func (a *Auth) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	claims, err := a.codec.VerifyRefresh(raw)
	if err != nil {
		return nil, ErrRefreshRejected
	}
	if _, err := a.store.FindRefreshToken(ctx, claims.UserID, raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrRefreshRejected
		}
		a.log.Error("refresh: whitelist lookup failed", zap.Error(err))
		return nil, wrapInternal(err, "refresh")
	}

	access, err := a.codec.IssueAccess(claims.UserID, claims.Username)
	if err != nil {
		a.log.Error("refresh: sign access token", zap.Error(err))
		return nil, wrapInternal(err, "refresh")
	}
	next, exp, err := a.codec.IssueRefresh(claims.UserID, claims.Username)
	if err != nil {
		a.log.Error("refresh: sign refresh token", zap.Error(err))
		return nil, wrapInternal(err, "refresh")
	}
	if err := a.store.RotateRefreshToken(ctx, raw, claims.UserID, next, exp); err != nil {
		a.log.Error("refresh: rotate refresh token", zap.Error(err))
		return nil, wrapInternal(err, "refresh")
	}

	return &TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout is idempotent and never reports failure to the caller: a stale or
// forged token simply has no whitelist row to delete, and revealing that
// would leak token state.
func (a *Auth) Logout(ctx context.Context, raw string) {
	if claims, err := a.codec.VerifyRefresh(raw); err == nil {
		a.log.Info("logout", zap.Uint("user_id", claims.UserID))
	} else {
		a.log.Info("logout with unverifiable token", zap.Error(err))
	}
	if err := a.store.DeleteRefreshToken(ctx, raw); err != nil {
		a.log.Error("logout: delete refresh token", zap.Error(err))
	}
}
