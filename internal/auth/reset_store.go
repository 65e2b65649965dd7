package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/models"
)

// ErrTokenSpent means a reset token could not be consumed: unknown, already
// used, expired or bound to a different user. One error for all cases.
var ErrTokenSpent = errors.New("reset token could not be consumed")

// ResetStore owns the one-time tokens for e-mail change and forgotten
// password flows. Consumption is an atomic used=true flip with the
// unused/unexpired precondition in the WHERE clause, so two concurrent
// activations cannot both succeed.
type ResetStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewResetStore(db *gorm.DB, ttl time.Duration) *ResetStore {
	return &ResetStore{db: db, ttl: ttl}
}

func (s *ResetStore) CreateEmailReset(userID uuid.UUID, tokenHash, pendingEmail string) error {
	rt := models.ResetToken{
		UserID:       userID,
		TokenHash:    tokenHash,
		PendingEmail: pendingEmail,
		ExpiresAt:    time.Now().Add(s.ttl),
	}
	return s.db.Create(&rt).Error
}

// ConsumeEmailReset marks the matching token used and returns it (for its
// pending e-mail). The returned row is only readable by the winner of the
// atomic flip.
func (s *ResetStore) ConsumeEmailReset(tokenHash string, userID uuid.UUID) (*models.ResetToken, error) {
	res := s.db.Model(&models.ResetToken{}).
		Where("token_hash = ? AND user_id = ? AND used = ? AND expires_at > ?",
			tokenHash, userID, false, time.Now()).
		Update("used", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenSpent
	}

	var rt models.ResetToken
	if err := s.db.Where("token_hash = ? AND user_id = ?", tokenHash, userID).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *ResetStore) CreatePasswordReset(userID uuid.UUID, tokenHash string) error {
	rt := models.PasswordResetToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	return s.db.Create(&rt).Error
}

func (s *ResetStore) ConsumePasswordReset(tokenHash string) (*models.PasswordResetToken, error) {
	res := s.db.Model(&models.PasswordResetToken{}).
		Where("token_hash = ? AND used = ? AND expires_at > ?", tokenHash, false, time.Now()).
		Update("used", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenSpent
	}

	var rt models.PasswordResetToken
	if err := s.db.Where("token_hash = ?", tokenHash).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// PurgeExpired removes spent and expired tokens of both kinds; called by the
// background sweep.
func (s *ResetStore) PurgeExpired() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.ResetToken{})
	if res.Error != nil {
		return res.RowsAffected, res.Error
	}
	n := res.RowsAffected

	res = s.db.Where("expires_at < ?", time.Now()).Delete(&models.PasswordResetToken{})
	return n + res.RowsAffected, res.Error
}
