package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clairecas/raglan-api/internal/response"
)

// TokenProtected gates an endpoint on a valid ACCESS_TOKEN cookie. Missing,
// malformed, expired and badly-signed tokens all fail with the same 401.
func (h *Handler) TokenProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies(cookieAccessToken)
		if accessToken == "" {
			return response.Unauthorized("Could not verify token")
		}

		userID, err := h.Issuer.Parse(accessToken)
		if err != nil {
			return response.Unauthorized("Could not verify token")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
