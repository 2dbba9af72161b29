package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/polgussi23/BeerWrapped-api/models"

	"gorm.io/gorm"
)

// Store is the credential store: user records plus the refresh-token
// whitelist. It is the only shared mutable state in the process; every
// revocation decision goes through it. Injected so tests can substitute an
// in-memory implementation.
type Store interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	StartDay(ctx context.Context, userID uint) (*time.Time, error)
	SetStartDay(ctx context.Context, userID uint, day time.Time) error

	SaveRefreshToken(ctx context.Context, userID uint, token string, expiresAt time.Time) error
	FindRefreshToken(ctx context.Context, userID uint, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	RotateRefreshToken(ctx context.Context, oldToken string, userID uint, newToken string, expiresAt time.Time) error
	DeleteRefreshTokensForUser(ctx context.Context, userID uint) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func newGormStore(db *gorm.DB) *gormStore {
	return &gormStore{db: db}
}

// Username and email lookups are byte-exact: Postgres compares with the
// default collation, which matches the case-sensitive behavior callers
// depend on for credential checks.
func (s *gormStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// pre-checks in the session manager race with concurrent inserts;
		// the unique constraints are the real guard
		if isUniqueConstraintError(err) {
			if strings.Contains(err.Error(), "email") {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (s *gormStore) StartDay(ctx context.Context, userID uint) (*time.Time, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user.StartDay, nil
}

func (s *gormStore) SetStartDay(ctx context.Context, userID uint, day time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("start_day", day)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) SaveRefreshToken(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	rt := models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return s.db.WithContext(ctx).Create(&rt).Error
}

// FindRefreshToken treats expired rows as absent; the sweep removes them
// physically later.
func (s *gormStore) FindRefreshToken(ctx context.Context, userID uint, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token = ? AND expires_at > ?", userID, token, time.Now()).
		First(&rt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (s *gormStore) DeleteRefreshToken(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

// RotateRefreshToken removes the consumed token and inserts its successor
// in one transaction so a crash between the steps cannot leave the user
// with no valid refresh token.
func (s *gormStore) RotateRefreshToken(ctx context.Context, oldToken string, userID uint, newToken string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", oldToken).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		rt := models.RefreshToken{UserID: userID, Token: newToken, ExpiresAt: expiresAt}
		return tx.Create(&rt).Error
	})
}

func (s *gormStore) DeleteRefreshTokensForUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

func (s *gormStore) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
