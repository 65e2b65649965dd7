package pattern

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/auth"
	"github.com/clairecas/raglan-api/internal/models"
	"github.com/clairecas/raglan-api/internal/response"
	"github.com/clairecas/raglan-api/internal/utils"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

type saveInput struct {
	PatternName   string   `json:"patternName"`
	JumperShape   string   `json:"jumperShape"`
	KnittingGauge *float64 `json:"knittingGauge"`

	EaseAmount         *float64 `json:"easeAmount"`
	ChestCircumference *float64 `json:"chestCircumference"`
	ArmLength          *float64 `json:"armLength"`
	ArmCircumference   *float64 `json:"armCircumference"`
	BodyLength         *float64 `json:"bodyLength"`
	NecklineToChest    *float64 `json:"necklineToChest"`
	ShoulderWidth      *float64 `json:"shoulderWidth"`
	PreferredUnit      string   `json:"preferredUnit"`
}

// Save validates and persists a new pattern for the signed-in user. Required
// fields are reported one at a time in a fixed order; everything wrong with
// the jumper data itself collapses into a single 400.
func (h *Handler) Save(c *fiber.Ctx) error {
	errIncorrectData := response.BadRequest("Incorrect jumper data - try again")

	var in saveInput
	if err := c.BodyParser(&in); err != nil {
		// A type mismatch (string where a number belongs) lands here.
		return errIncorrectData
	}

	in.PatternName = utils.CleanText(in.PatternName)

	switch {
	case in.PatternName == "":
		return response.BadRequest("Missing required field: patternName")
	case in.JumperShape == "":
		return response.BadRequest("Missing required field: jumperShape")
	case in.KnittingGauge == nil:
		return response.BadRequest("Missing required field: knittingGauge")
	}

	if !validJumperData(&in) {
		return errIncorrectData
	}

	uid := auth.CurrentUserID(c)

	var owner models.User
	if err := h.DB.First(&owner, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound("User not found")
		}
		return err
	}

	p := models.Pattern{
		UserID:             uid,
		PatternName:        in.PatternName,
		JumperShape:        in.JumperShape,
		KnittingGauge:      *in.KnittingGauge,
		EaseAmount:         in.EaseAmount,
		ChestCircumference: in.ChestCircumference,
		ArmLength:          in.ArmLength,
		ArmCircumference:   in.ArmCircumference,
		BodyLength:         in.BodyLength,
		NecklineToChest:    in.NecklineToChest,
		ShoulderWidth:      in.ShoulderWidth,
		PreferredUnit:      in.PreferredUnit,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Pattern %s has been created", p.ID),
		"pattern": p,
	})
}

// GetMine lists every pattern owned by the signed-in user, newest first.
func (h *Handler) GetMine(c *fiber.Ctx) error {
	uid := auth.CurrentUserID(c)

	var patterns []models.Pattern
	if err := h.DB.Where("user_id = ?", uid).Order("created_at DESC").Find(&patterns).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"patterns": patterns})
}

// GetByID fetches a single pattern, scoped to the signed-in owner. A pattern
// belonging to someone else is indistinguishable from one that doesn't exist.
func (h *Handler) GetByID(c *fiber.Ctx) error {
	patternID, err := uuid.Parse(c.Params("patternId"))
	if err != nil {
		return response.NotFound("Pattern not found")
	}

	uid := auth.CurrentUserID(c)

	var p models.Pattern
	if err := h.DB.Where("id = ? AND user_id = ?", patternID, uid).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound("Pattern not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"pattern": p})
}

// DeleteByID removes a pattern, scoped to the signed-in owner.
func (h *Handler) DeleteByID(c *fiber.Ctx) error {
	patternID, err := uuid.Parse(c.Params("patternId"))
	if err != nil {
		return response.NotFound("Pattern not found")
	}

	uid := auth.CurrentUserID(c)

	res := h.DB.Where("id = ? AND user_id = ?", patternID, uid).Delete(&models.Pattern{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NotFound("Pattern not found")
	}

	return c.JSON(fiber.Map{"message": "Pattern deleted"})
}
