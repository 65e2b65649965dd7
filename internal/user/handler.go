package user

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/auth"
	"github.com/clairecas/raglan-api/internal/models"
	"github.com/clairecas/raglan-api/internal/response"
	"github.com/clairecas/raglan-api/internal/utils"
)

type Handler struct {
	DB       *gorm.DB
	Sessions *auth.SessionStore
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Sessions: auth.NewSessionStore(db)}
}

type measurementFields struct {
	ChestCircumference *float64 `json:"chestCircumference"`
	ArmLength          *float64 `json:"armLength"`
	ArmCircumference   *float64 `json:"armCircumference"`
	BodyLength         *float64 `json:"bodyLength"`
	NecklineToChest    *float64 `json:"necklineToChest"`
	ShoulderWidth      *float64 `json:"shoulderWidth"`
}

// Register creates an account. Username and e-mail must be unique; the
// conflict responses are distinct because both values are public anyway.
func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		measurementFields
		PreferredUnit string `json:"preferredUnit"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest("Invalid request body")
	}

	username := utils.CleanText(body.Username)
	email := utils.NormalizeEmail(body.Email)

	switch {
	case username == "":
		return response.BadRequest("Missing required field: username")
	case email == "":
		return response.BadRequest("Missing required field: email")
	case body.Password == "":
		return response.BadRequest("Missing required field: password")
	}

	var existing models.User
	if err := h.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return response.BadRequest("This username is already is use")
	}
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return response.BadRequest("This e-mail address is already is use")
	}

	hashed, err := utils.HashPassword(body.Password)
	if err != nil {
		return err
	}

	u := models.User{
		Username:           username,
		Email:              email,
		Password:           hashed,
		ChestCircumference: body.ChestCircumference,
		ArmLength:          body.ArmLength,
		ArmCircumference:   body.ArmCircumference,
		BodyLength:         body.BodyLength,
		NecklineToChest:    body.NecklineToChest,
		ShoulderWidth:      body.ShoulderWidth,
		PreferredUnit:      body.PreferredUnit,
	}
	if err := h.DB.Create(&u).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("User %s has been created", u.ID),
	})
}

// Update applies a partial profile update for the signed-in user. Sending
// the current username or e-mail back unchanged is not a conflict.
func (h *Handler) Update(c *fiber.Ctx) error {
	var body struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		measurementFields
		PreferredUnit *string `json:"preferredUnit"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest("Invalid request body")
	}

	uid := auth.CurrentUserID(c)

	var u models.User
	if err := h.DB.First(&u, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound("The user you attempted to update doesn't exist")
		}
		return err
	}

	if body.Username != nil {
		username := utils.CleanText(*body.Username)
		if username == "" {
			return response.BadRequest("Missing required field: username")
		}
		var existing models.User
		if err := h.DB.Where("username = ? AND id <> ?", username, uid).First(&existing).Error; err == nil {
			return response.BadRequest("This username is already is use")
		}
		u.Username = username
	}

	if body.Email != nil {
		email := utils.NormalizeEmail(*body.Email)
		if email == "" {
			return response.BadRequest("Missing required field: email")
		}
		var existing models.User
		if err := h.DB.Where("email = ? AND id <> ?", email, uid).First(&existing).Error; err == nil {
			return response.BadRequest("This e-mail address is already is use")
		}
		u.Email = email
	}

	if body.ChestCircumference != nil {
		u.ChestCircumference = body.ChestCircumference
	}
	if body.ArmLength != nil {
		u.ArmLength = body.ArmLength
	}
	if body.ArmCircumference != nil {
		u.ArmCircumference = body.ArmCircumference
	}
	if body.BodyLength != nil {
		u.BodyLength = body.BodyLength
	}
	if body.NecklineToChest != nil {
		u.NecklineToChest = body.NecklineToChest
	}
	if body.ShoulderWidth != nil {
		u.ShoulderWidth = body.ShoulderWidth
	}
	if body.PreferredUnit != nil {
		u.PreferredUnit = *body.PreferredUnit
	}

	if err := h.DB.Save(&u).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("User %s has been updated", u.ID),
	})
}

// Delete removes the account along with every pattern it owns, retires all
// of its sessions and clears the token cookies.
func (h *Handler) Delete(c *fiber.Ctx) error {
	uid := auth.CurrentUserID(c)

	var u models.User
	if err := h.DB.First(&u, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound("User not found")
		}
		return err
	}

	if err := h.DB.Where("user_id = ?", uid).Delete(&models.Pattern{}).Error; err != nil {
		return err
	}
	if err := h.Sessions.BlacklistAllForUser(uid); err != nil {
		return err
	}
	if err := h.DB.Delete(&u).Error; err != nil {
		return err
	}

	auth.ClearSessionCookies(c)

	return c.JSON(fiber.Map{"message": "User account deleted"})
}

// Me returns the sanitized profile of the signed-in user.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid := auth.CurrentUserID(c)

	var u models.User
	if err := h.DB.First(&u, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound("User not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"user": u.Profile()})
}
