package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/models"
)

// ErrNoActiveSession means no live refresh-token row matched the requested
// operation: the token was rotated already, blacklisted, expired or never
// existed. Callers must not distinguish which.
var ErrNoActiveSession = errors.New("no active session")

// SessionStore owns the refresh-token rows. Every invariant that must hold
// under concurrent requests is a single UPDATE with its precondition in the
// WHERE clause; RowsAffected tells us whether we were first.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(userID uuid.UUID, tokenHash, deviceIDHash string, expiresAt time.Time) error {
	rt := models.RefreshToken{
		UserID:       userID,
		TokenHash:    tokenHash,
		DeviceIDHash: deviceIDHash,
		ExpiresAt:    expiresAt,
	}
	return s.db.Create(&rt).Error
}

// ConsumeForRotation blacklists the row matching (tokenHash, user, device)
// atomically. Exactly one concurrent caller wins; replays of an
// already-rotated, blacklisted or expired token lose.
func (s *SessionStore) ConsumeForRotation(tokenHash string, userID uuid.UUID, deviceIDHash string) error {
	res := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND user_id = ? AND device_id_hash = ? AND blacklisted = ? AND expires_at > ?",
			tokenHash, userID, deviceIDHash, false, time.Now()).
		Update("blacklisted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoActiveSession
	}
	return nil
}

// BlacklistByTokenHash is the defensive path: a refresh token that failed
// signature or expiry checks but may still have a stored row.
func (s *SessionStore) BlacklistByTokenHash(tokenHash string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("blacklisted", true).Error
}

// BlacklistActiveForDevice retires any live session left on a device before
// a new one is issued, keeping at most one active row per (user, device).
func (s *SessionStore) BlacklistActiveForDevice(userID uuid.UUID, deviceIDHash string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND device_id_hash = ? AND blacklisted = ?", userID, deviceIDHash, false).
		Update("blacklisted", true).Error
}

// BlacklistForDevice retires every session on the device, used at sign-out.
func (s *SessionStore) BlacklistForDevice(userID uuid.UUID, deviceIDHash string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND device_id_hash = ?", userID, deviceIDHash).
		Update("blacklisted", true).Error
}

// BlacklistAllForUser logs the user out everywhere.
func (s *SessionStore) BlacklistAllForUser(userID uuid.UUID) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("blacklisted", true).Error
}

// BlacklistAllExceptDevice logs the user out of every other device while
// keeping the current session alive, used at password change.
func (s *SessionStore) BlacklistAllExceptDevice(userID uuid.UUID, deviceIDHash string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND device_id_hash <> ?", userID, deviceIDHash).
		Update("blacklisted", true).Error
}

// PurgeExpired physically removes rows past their expiry; called by the
// background sweep.
func (s *SessionStore) PurgeExpired() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
