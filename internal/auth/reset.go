package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/mail"
	"github.com/clairecas/raglan-api/internal/models"
	"github.com/clairecas/raglan-api/internal/response"
	"github.com/clairecas/raglan-api/internal/utils"
)

// ResetLoggedInUserPassword lets an authenticated user change their password
// after re-entering the current one. Every session on OTHER devices is
// retired; the current device stays signed in.
func (h *Handler) ResetLoggedInUserPassword(c *fiber.Ctx) error {
	errResetFailed := response.BadRequest("Password reset failed")

	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&body); err != nil || body.OldPassword == "" || body.NewPassword == "" {
		return errResetFailed
	}

	userID := CurrentUserID(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errResetFailed
		}
		return err
	}
	if !utils.CheckPasswordHash(body.OldPassword, user.Password) {
		return errResetFailed
	}

	hashed, err := utils.HashPassword(body.NewPassword)
	if err != nil {
		return err
	}
	if err := h.DB.Model(&user).Update("password", hashed).Error; err != nil {
		return err
	}

	deviceIDHash := utils.HashToken(c.Cookies(cookieDeviceID))
	if err := h.Sessions.BlacklistAllExceptDevice(userID, deviceIDHash); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User password updated successfully"})
}

// RequestEmailReset mints a one-time token bound to the requested new
// address and mails a confirmation link to it. All of the user's sessions
// are retired at request time, not at activation.
func (h *Handler) RequestEmailReset(c *fiber.Ctx) error {
	errResetFailed := response.BadRequest("Email reset failed")

	var body struct {
		Password string `json:"password"`
		NewEmail string `json:"newEmail"`
	}
	if err := c.BodyParser(&body); err != nil || body.Password == "" {
		return errResetFailed
	}

	newEmail := utils.NormalizeEmail(body.NewEmail)
	if newEmail == "" {
		return errResetFailed
	}

	userID := CurrentUserID(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errResetFailed
		}
		return err
	}
	if !utils.CheckPasswordHash(body.Password, user.Password) {
		return errResetFailed
	}

	rawToken := utils.NewSecureToken()
	if err := h.Resets.CreateEmailReset(userID, utils.HashToken(rawToken), newEmail); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/activate-email/%s?token=%s", h.Cfg.AppBaseURL, userID, rawToken)
	if err := h.Mailer.Send(newEmail, "Confirm your new Raglan Generator e-mail", mail.EmailChangeBody(newEmail, link)); err != nil {
		return response.Internal("Could not send confirmation e-mail")
	}

	if err := h.Sessions.BlacklistAllForUser(userID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User e-mail reset requested"})
}

// ActivateNewEmail consumes the one-time token from the confirmation link,
// applies the pending address and opens a fresh session. A single 401 covers
// missing, unknown, expired and already-used tokens alike.
func (h *Handler) ActivateNewEmail(c *fiber.Ctx) error {
	errActivation := response.Unauthorized("Could not activate new e-mail")

	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return errActivation
	}

	var body struct {
		ResetToken string `json:"resetToken"`
	}
	if err := c.BodyParser(&body); err != nil || body.ResetToken == "" {
		return errActivation
	}

	resetToken, err := h.Resets.ConsumeEmailReset(utils.HashToken(body.ResetToken), userID)
	if err != nil {
		if errors.Is(err, ErrTokenSpent) {
			return errActivation
		}
		return err
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", userID).Update("email", resetToken.PendingEmail)
	if res.Error != nil || res.RowsAffected == 0 {
		return errActivation
	}

	// Any leftover sessions predate the e-mail change; make sure none of
	// them survive before issuing the new pair.
	if err := h.Sessions.BlacklistAllForUser(userID); err != nil {
		return err
	}

	deviceIDHash := utils.HashToken(h.resolveDeviceID(c))
	if err := h.startSession(c, userID, deviceIDHash); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "New user e-mail activated"})
}

// RequestForgottenPasswordReset mints a one-time reset token when the
// address belongs to an account. The response is the same either way so the
// endpoint cannot be used to probe for registered e-mails.
func (h *Handler) RequestForgottenPasswordReset(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.BadRequest("Missing required field: email")
	}

	okResponse := fiber.Map{"message": "If an account exists, a password reset e-mail has been sent"}

	var user models.User
	if err := h.DB.Where("email = ?", utils.NormalizeEmail(body.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(okResponse)
		}
		return err
	}

	rawToken := utils.NewSecureToken()
	if err := h.Resets.CreatePasswordReset(user.ID, utils.HashToken(rawToken)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", h.Cfg.AppBaseURL, rawToken)
	if err := h.Mailer.Send(user.Email, "Reset your Raglan Generator password", mail.PasswordResetBody(link)); err != nil {
		return response.Internal("Could not send password reset e-mail")
	}

	return c.JSON(okResponse)
}

// ResetForgottenPassword consumes a forgotten-password token and overwrites
// the password hash. One undifferentiated 400 for missing, unknown, expired
// and already-used tokens.
func (h *Handler) ResetForgottenPassword(c *fiber.Ctx) error {
	errResetFailed := response.BadRequest("Could not authorise password reset")

	var body struct {
		NewPassword string `json:"newPassword"`
		ResetToken  string `json:"resetToken"`
	}
	if err := c.BodyParser(&body); err != nil || body.NewPassword == "" || body.ResetToken == "" {
		return errResetFailed
	}

	resetToken, err := h.Resets.ConsumePasswordReset(utils.HashToken(body.ResetToken))
	if err != nil {
		if errors.Is(err, ErrTokenSpent) {
			return errResetFailed
		}
		return err
	}

	hashed, err := utils.HashPassword(body.NewPassword)
	if err != nil {
		return err
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", resetToken.UserID).Update("password", hashed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errResetFailed
	}

	if err := h.Sessions.BlacklistAllForUser(resetToken.UserID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Password has been reset successfully"})
}
