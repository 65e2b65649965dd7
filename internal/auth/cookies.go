package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clairecas/raglan-api/internal/config"
	"github.com/clairecas/raglan-api/internal/utils"
)

const (
	cookieDeviceID     = "DEVICE_ID"
	cookieAccessToken  = "ACCESS_TOKEN"
	cookieRefreshToken = "REFRESH_TOKEN"
)

func newCookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// resolveDeviceID returns the opaque id identifying this browser/device,
// minting one (and setting its long-lived cookie) the first time the device
// is seen. The id is never rotated; only its hash is stored or compared.
func (h *Handler) resolveDeviceID(c *fiber.Ctx) string {
	deviceID := c.Cookies(cookieDeviceID)
	if deviceID == "" {
		deviceID = utils.NewSecureToken()
		c.Cookie(newCookie(cookieDeviceID, deviceID, time.Now().Add(h.Cfg.DeviceCookieTTL)))
	}
	return deviceID
}

func setSessionCookies(c *fiber.Ctx, accessToken, refreshToken string, cfg *config.Config) {
	c.Cookie(newCookie(cookieAccessToken, accessToken, time.Now().Add(cfg.AccessTokenTTL)))
	c.Cookie(newCookie(cookieRefreshToken, refreshToken, time.Now().Add(cfg.RefreshTokenTTL)))
}

// ClearSessionCookies expires both token cookies; also used by account
// deletion in the user package.
func ClearSessionCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(newCookie(cookieAccessToken, "", expired))
	c.Cookie(newCookie(cookieRefreshToken, "", expired))
}
