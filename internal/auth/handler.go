package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/config"
	"github.com/clairecas/raglan-api/internal/mail"
	"github.com/clairecas/raglan-api/internal/models"
	"github.com/clairecas/raglan-api/internal/response"
	"github.com/clairecas/raglan-api/internal/token"
	"github.com/clairecas/raglan-api/internal/utils"
)

// Handler orchestrates the authentication flows: sign-in/out, session
// refresh and the reset-token lifecycles in reset.go.
type Handler struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Issuer   *token.Issuer
	Mailer   mail.Sender
	Sessions *SessionStore
	Resets   *ResetStore
}

func NewHandler(db *gorm.DB, cfg *config.Config, issuer *token.Issuer, mailer mail.Sender) *Handler {
	return &Handler{
		DB:       db,
		Cfg:      cfg,
		Issuer:   issuer,
		Mailer:   mailer,
		Sessions: NewSessionStore(db),
		Resets:   NewResetStore(db, cfg.ResetTokenTTL),
	}
}

// SignIn authenticates by e-mail and password and opens a session on the
// requesting device. The same 400 is returned whether the e-mail is unknown
// or the password wrong, so callers cannot enumerate accounts.
func (h *Handler) SignIn(c *fiber.Ctx) error {
	errInvalidCredentials := response.BadRequest("Invalid e-mail or password")

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return errInvalidCredentials
	}
	if body.Email == "" || body.Password == "" {
		return errInvalidCredentials
	}

	var user models.User
	if err := h.DB.Where("email = ?", utils.NormalizeEmail(body.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidCredentials
		}
		return err
	}
	if !utils.CheckPasswordHash(body.Password, user.Password) {
		return errInvalidCredentials
	}

	deviceID := h.resolveDeviceID(c)
	deviceIDHash := utils.HashToken(deviceID)

	// Should not normally happen: this device already holds a live session
	// for the user. Retire it so at most one active row exists per device.
	if err := h.Sessions.BlacklistActiveForDevice(user.ID, deviceIDHash); err != nil {
		return err
	}

	if err := h.startSession(c, user.ID, deviceIDHash); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "User signed-in successfully",
		"signedInUser": user.Profile(),
	})
}

// SignOut retires every session on the requesting device and clears the
// token cookies. The device cookie stays: the device is still known.
func (h *Handler) SignOut(c *fiber.Ctx) error {
	refreshToken := c.Cookies(cookieRefreshToken)
	deviceID := c.Cookies(cookieDeviceID)
	if refreshToken == "" || deviceID == "" {
		return response.BadRequest("No active session found")
	}

	userID := CurrentUserID(c)
	if err := h.Sessions.BlacklistForDevice(userID, utils.HashToken(deviceID)); err != nil {
		return err
	}

	ClearSessionCookies(c)

	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}

// RefreshSession exchanges a valid refresh token for a fresh token pair,
// rotating the stored session row. The refresh cookie itself is the
// credential; no access token is required.
func (h *Handler) RefreshSession(c *fiber.Ctx) error {
	errUnidentified := response.Unauthorized("Could not identify user")

	refreshToken := c.Cookies(cookieRefreshToken)
	deviceID := c.Cookies(cookieDeviceID)
	if refreshToken == "" || deviceID == "" {
		return errUnidentified
	}

	userID, err := h.Issuer.Parse(refreshToken)
	if err != nil {
		// The token is invalid or expired but a row for it may still be
		// around if the sweep hasn't caught up; blacklist it on the spot.
		if berr := h.Sessions.BlacklistByTokenHash(utils.HashToken(refreshToken)); berr != nil {
			return berr
		}
		return errUnidentified
	}

	deviceIDHash := utils.HashToken(deviceID)

	// One atomic step: the row is blacklisted as it is claimed, so a replay
	// of an already-rotated token (or a token deleted from the store but
	// still signed) finds nothing to consume.
	if err := h.Sessions.ConsumeForRotation(utils.HashToken(refreshToken), userID, deviceIDHash); err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return errUnidentified
		}
		return err
	}

	if err := h.startSession(c, userID, deviceIDHash); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Session renewed successfully"})
}

// startSession issues a fresh access/refresh pair for the device, persists
// the hashed refresh token and sets both cookies.
func (h *Handler) startSession(c *fiber.Ctx, userID uuid.UUID, deviceIDHash string) error {
	accessToken, err := h.Issuer.AccessToken(userID)
	if err != nil {
		return err
	}
	refreshToken, err := h.Issuer.RefreshToken(userID)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(h.Cfg.RefreshTokenTTL)
	if err := h.Sessions.Create(userID, utils.HashToken(refreshToken), deviceIDHash, expiresAt); err != nil {
		return err
	}

	setSessionCookies(c, accessToken, refreshToken, h.Cfg)
	return nil
}

func CurrentUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
