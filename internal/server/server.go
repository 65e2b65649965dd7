package server

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/config"
	"github.com/clairecas/raglan-api/internal/mail"
	"github.com/clairecas/raglan-api/internal/response"
	"github.com/clairecas/raglan-api/internal/token"
)

// Deps bundles everything the route handlers need. main wires the real
// collaborators; tests swap in sqlite and a recording mailer.
type Deps struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Issuer *token.Issuer
	Mailer mail.Sender
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: response.ErrorHandler,
	})

	SetupRoutes(app, deps)

	return app
}
