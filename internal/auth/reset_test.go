package auth_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clairecas/raglan-api/internal/models"
	"github.com/clairecas/raglan-api/internal/testutils"
	"github.com/clairecas/raglan-api/internal/utils"
)

// tokenFromMail pulls the raw one-time token out of the link embedded in a
// recorded message body.
func tokenFromMail(t *testing.T, body string) string {
	_, after, found := strings.Cut(body, "token=")
	assert.True(t, found, "No token link in mail body")
	end := strings.IndexByte(after, '"')
	assert.Greater(t, end, 0)
	return after[:end]
}

func TestResetLoggedInUserPassword(t *testing.T) {
	env := testutils.Setup(t)
	user := env.CreateUser(t, "ada", "ada@example.com", "password123")

	t.Run("Success - Other devices signed out, current stays", func(t *testing.T) {
		otherCookies := env.SignIn(t, "ada@example.com", "password123")
		cookies := env.SignIn(t, "ada@example.com", "password123")

		resp := env.Request(t, "PATCH", "/api/authentication/password-reset-authenticated-user", map[string]interface{}{
			"oldPassword": "password123",
			"newPassword": "betterpassword456",
		}, cookies...)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, "User password updated successfully", testutils.Message(t, resp))

		var u models.User
		assert.NoError(t, env.DB.First(&u, "id = ?", user.ID).Error)
		assert.True(t, utils.CheckPasswordHash("betterpassword456", u.Password))

		otherDevice := named(otherCookies, "DEVICE_ID")
		currentDevice := named(cookies, "DEVICE_ID")

		var active int64
		env.DB.Model(&models.RefreshToken{}).
			Where("device_id_hash = ? AND blacklisted = ?", utils.HashToken(otherDevice.Value), false).
			Count(&active)
		assert.Equal(t, int64(0), active, "Other device should be signed out")

		env.DB.Model(&models.RefreshToken{}).
			Where("device_id_hash = ? AND blacklisted = ?", utils.HashToken(currentDevice.Value), false).
			Count(&active)
		assert.Equal(t, int64(1), active, "Current device should stay signed in")
	})

	t.Run("Error - Wrong current password", func(t *testing.T) {
		cookies := env.SignIn(t, "ada@example.com", "betterpassword456")

		resp := env.Request(t, "PATCH", "/api/authentication/password-reset-authenticated-user", map[string]interface{}{
			"oldPassword": "wrongpassword",
			"newPassword": "whatever789",
		}, cookies...)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Password reset failed", testutils.Message(t, resp))
	})

	t.Run("Error - Missing fields", func(t *testing.T) {
		cookies := env.SignIn(t, "ada@example.com", "betterpassword456")

		resp := env.Request(t, "PATCH", "/api/authentication/password-reset-authenticated-user", map[string]interface{}{
			"oldPassword": "betterpassword456",
		}, cookies...)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Password reset failed", testutils.Message(t, resp))
	})
}

func TestEmailReset(t *testing.T) {
	env := testutils.Setup(t)
	user := env.CreateUser(t, "ada", "ada@example.com", "password123")

	t.Run("Success - Full request and activation round-trip", func(t *testing.T) {
		cookies := env.SignIn(t, "ada@example.com", "password123")

		resp := env.Request(t, "POST", "/api/authentication/email-reset-request-authenticated-user", map[string]interface{}{
			"password": "password123",
			"newEmail": "ada.lovelace@example.com",
		}, cookies...)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, "User e-mail reset requested", testutils.Message(t, resp))

		// The confirmation goes to the NEW address and every session dies
		// immediately.
		assert.Len(t, env.Mailer.Sent, 1)
		assert.Equal(t, "ada.lovelace@example.com", env.Mailer.Sent[0].To)

		var active int64
		env.DB.Model(&models.RefreshToken{}).
			Where("user_id = ? AND blacklisted = ?", user.ID, false).
			Count(&active)
		assert.Equal(t, int64(0), active)

		rawToken := tokenFromMail(t, env.Mailer.Sent[0].Body)
		activateURL := fmt.Sprintf("/api/authentication/email-reset-activate-new-email/%s", user.ID)

		resp = env.Request(t, "PATCH", activateURL, map[string]interface{}{
			"resetToken": rawToken,
		})
		assert.Equal(t, 201, resp.StatusCode)
		assert.NotNil(t, testutils.Cookie(resp, "ACCESS_TOKEN"))
		assert.NotNil(t, testutils.Cookie(resp, "REFRESH_TOKEN"))
		assert.NotNil(t, testutils.Cookie(resp, "DEVICE_ID"))
		assert.Equal(t, "New user e-mail activated", testutils.Message(t, resp))

		var u models.User
		assert.NoError(t, env.DB.First(&u, "id = ?", user.ID).Error)
		assert.Equal(t, "ada.lovelace@example.com", u.Email)

		// One-time token: a second activation attempt fails.
		resp = env.Request(t, "PATCH", activateURL, map[string]interface{}{
			"resetToken": rawToken,
		})
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "Could not activate new e-mail", testutils.Message(t, resp))
	})

	t.Run("Error - Wrong password on request", func(t *testing.T) {
		cookies := env.SignIn(t, "ada.lovelace@example.com", "password123")

		resp := env.Request(t, "POST", "/api/authentication/email-reset-request-authenticated-user", map[string]interface{}{
			"password": "wrongpassword",
			"newEmail": "other@example.com",
		}, cookies...)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Email reset failed", testutils.Message(t, resp))
	})

	t.Run("Error - Mail transport failure surfaces", func(t *testing.T) {
		cookies := env.SignIn(t, "ada.lovelace@example.com", "password123")
		env.Mailer.Err = errors.New("ses unavailable")
		defer func() { env.Mailer.Err = nil }()

		resp := env.Request(t, "POST", "/api/authentication/email-reset-request-authenticated-user", map[string]interface{}{
			"password": "password123",
			"newEmail": "other@example.com",
		}, cookies...)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Could not send confirmation e-mail", testutils.Message(t, resp))
	})

	t.Run("Error - Activation with unknown user id", func(t *testing.T) {
		resp := env.Request(t, "PATCH", "/api/authentication/email-reset-activate-new-email/not-a-uuid", map[string]interface{}{
			"resetToken": "whatever",
		})
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "Could not activate new e-mail", testutils.Message(t, resp))
	})

	t.Run("Error - Expired activation token", func(t *testing.T) {
		cookies := env.SignIn(t, "ada.lovelace@example.com", "password123")

		resp := env.Request(t, "POST", "/api/authentication/email-reset-request-authenticated-user", map[string]interface{}{
			"password": "password123",
			"newEmail": "expired@example.com",
		}, cookies...)
		assert.Equal(t, 201, resp.StatusCode)
		resp.Body.Close()

		rawToken := tokenFromMail(t, env.Mailer.Sent[len(env.Mailer.Sent)-1].Body)
		env.DB.Model(&models.ResetToken{}).
			Where("token_hash = ?", utils.HashToken(rawToken)).
			Update("expires_at", time.Now().Add(-time.Minute))

		resp = env.Request(t, "PATCH",
			fmt.Sprintf("/api/authentication/email-reset-activate-new-email/%s", user.ID),
			map[string]interface{}{"resetToken": rawToken})
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestForgottenPassword(t *testing.T) {
	env := testutils.Setup(t)
	user := env.CreateUser(t, "ada", "ada@example.com", "password123")

	requestURL := "/api/authentication/password-reset-forgotten-password-request"

	t.Run("Success - Request mints token and mails the account", func(t *testing.T) {
		resp := env.Request(t, "POST", requestURL, map[string]interface{}{
			"email": "ada@example.com",
		})
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "If an account exists, a password reset e-mail has been sent", testutils.Message(t, resp))
		assert.Len(t, env.Mailer.Sent, 1)
		assert.Equal(t, "ada@example.com", env.Mailer.Sent[0].To)

		var count int64
		env.DB.Model(&models.PasswordResetToken{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Success - Unknown address gets the same answer, no mail", func(t *testing.T) {
		sent := len(env.Mailer.Sent)

		resp := env.Request(t, "POST", requestURL, map[string]interface{}{
			"email": "nobody@example.com",
		})
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "If an account exists, a password reset e-mail has been sent", testutils.Message(t, resp))
		assert.Len(t, env.Mailer.Sent, sent)
	})

	t.Run("Error - Missing email", func(t *testing.T) {
		resp := env.Request(t, "POST", requestURL, map[string]interface{}{})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Missing required field: email", testutils.Message(t, resp))
	})

	t.Run("Success - Consume resets the password and kills sessions", func(t *testing.T) {
		env.SignIn(t, "ada@example.com", "password123")

		rawToken := tokenFromMail(t, env.Mailer.Sent[0].Body)

		resp := env.Request(t, "PATCH", requestURL, map[string]interface{}{
			"newPassword": "reset-password789",
			"resetToken":  rawToken,
		})
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, "Password has been reset successfully", testutils.Message(t, resp))

		var u models.User
		assert.NoError(t, env.DB.First(&u, "id = ?", user.ID).Error)
		assert.True(t, utils.CheckPasswordHash("reset-password789", u.Password))

		var active int64
		env.DB.Model(&models.RefreshToken{}).
			Where("user_id = ? AND blacklisted = ?", user.ID, false).
			Count(&active)
		assert.Equal(t, int64(0), active)

		// The token is spent now.
		resp = env.Request(t, "PATCH", requestURL, map[string]interface{}{
			"newPassword": "another-password",
			"resetToken":  rawToken,
		})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Could not authorise password reset", testutils.Message(t, resp))
	})

	t.Run("Error - Unknown token", func(t *testing.T) {
		resp := env.Request(t, "PATCH", requestURL, map[string]interface{}{
			"newPassword": "whatever123",
			"resetToken":  utils.NewSecureToken(),
		})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Could not authorise password reset", testutils.Message(t, resp))
	})

	t.Run("Error - Expired token", func(t *testing.T) {
		resp := env.Request(t, "POST", requestURL, map[string]interface{}{
			"email": "ada@example.com",
		})
		assert.Equal(t, 200, resp.StatusCode)
		resp.Body.Close()

		rawToken := tokenFromMail(t, env.Mailer.Sent[len(env.Mailer.Sent)-1].Body)
		env.DB.Model(&models.PasswordResetToken{}).
			Where("token_hash = ?", utils.HashToken(rawToken)).
			Update("expires_at", time.Now().Add(-time.Minute))

		resp = env.Request(t, "PATCH", requestURL, map[string]interface{}{
			"newPassword": "whatever123",
			"resetToken":  rawToken,
		})
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestTokenProtected(t *testing.T) {
	env := testutils.Setup(t)
	env.CreateUser(t, "ada", "ada@example.com", "password123")

	t.Run("Error - No access token", func(t *testing.T) {
		resp := env.Request(t, "GET", "/api/users/me", nil)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "Could not verify token", testutils.Message(t, resp))
	})

	t.Run("Error - Malformed access token", func(t *testing.T) {
		resp := env.Request(t, "GET", "/api/users/me", nil,
			&http.Cookie{Name: "ACCESS_TOKEN", Value: "garbage"})
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "Could not verify token", testutils.Message(t, resp))
	})

	t.Run("Success - Signed-in user passes the gate", func(t *testing.T) {
		cookies := env.SignIn(t, "ada@example.com", "password123")

		resp := env.Request(t, "GET", "/api/users/me", nil, cookies...)
		assert.Equal(t, 200, resp.StatusCode)
		resp.Body.Close()
	})
}
