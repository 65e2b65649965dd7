package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/clairecas/raglan-api/internal/auth"
	"github.com/clairecas/raglan-api/internal/pattern"
	"github.com/clairecas/raglan-api/internal/response"
	"github.com/clairecas/raglan-api/internal/user"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Cfg.AppBaseURL,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: true,
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Raglan Generator API is running",
		})
	})

	authHandler := auth.NewHandler(deps.DB, deps.Cfg, deps.Issuer, deps.Mailer)
	userHandler := user.NewHandler(deps.DB)
	patternHandler := pattern.NewHandler(deps.DB)

	gate := authHandler.TokenProtected()

	// ==========================================
	// AUTHENTICATION
	// ==========================================
	authGroup := app.Group("/api/authentication")
	authGroup.Post("/", authHandler.SignIn)
	authGroup.Post("/sign-out-user", gate, authHandler.SignOut)
	authGroup.Post("/refresh-session", authHandler.RefreshSession)
	authGroup.Patch("/password-reset-authenticated-user", gate, authHandler.ResetLoggedInUserPassword)
	authGroup.Post("/email-reset-request-authenticated-user", gate, authHandler.RequestEmailReset)
	authGroup.Patch("/email-reset-activate-new-email/:userId", authHandler.ActivateNewEmail)
	authGroup.Post("/password-reset-forgotten-password-request", authHandler.RequestForgottenPasswordReset)
	authGroup.Patch("/password-reset-forgotten-password-request", authHandler.ResetForgottenPassword)

	// ==========================================
	// USERS
	// ==========================================
	userGroup := app.Group("/api/users")
	userGroup.Post("/", userHandler.Register)
	userGroup.Get("/me", gate, userHandler.Me)
	userGroup.Put("/", gate, userHandler.Update)
	userGroup.Delete("/", gate, userHandler.Delete)

	// ==========================================
	// PATTERNS
	// ==========================================
	patternGroup := app.Group("/api/patterns")
	patternGroup.Use(gate)
	patternGroup.Post("/", patternHandler.Save)
	patternGroup.Get("/my-patterns", patternHandler.GetMine)
	patternGroup.Get("/:patternId", patternHandler.GetByID)
	patternGroup.Delete("/:patternId", patternHandler.DeleteByID)

	// Anything that falls through every route above.
	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound("Not Found - the url entered does not match any content")
	})
}
