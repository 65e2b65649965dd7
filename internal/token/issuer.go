package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrInvalidToken  = errors.New("invalid token")
)

const defaultTestSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

// Issuer signs the two classes of session tokens. The secret and durations
// are injected at construction, never read from ambient state.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// ValidateSecret rejects secrets that are unset, too short to be safe, or
// the well-known test value.
func ValidateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}
	if secret == defaultTestSecret {
		return fmt.Errorf("cannot use default test secret in production")
	}
	return nil
}

// AccessToken issues the short-lived token authorising ordinary requests.
func (i *Issuer) AccessToken(userID uuid.UUID) (string, error) {
	return i.sign(userID, i.accessTTL)
}

// RefreshToken issues the long-lived token exchanged at session refresh. Its
// hash, not its raw value, is what the session store persists.
func (i *Issuer) RefreshToken(userID uuid.UUID) (string, error) {
	return i.sign(userID, i.refreshTTL)
}

func (i *Issuer) sign(userID uuid.UUID, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", ErrInvalidUserID
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		// random nonce so two tokens minted in the same second still differ
		"jti": uuid.NewString(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies signature and expiry and returns the embedded user id.
func (i *Issuer) Parse(tokenStr string) (uuid.UUID, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	sub, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
