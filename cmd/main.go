package main

import (
	"log"
	"time"

	"github.com/clairecas/raglan-api/internal/auth"
	"github.com/clairecas/raglan-api/internal/config"
	"github.com/clairecas/raglan-api/internal/database"
	"github.com/clairecas/raglan-api/internal/mail"
	"github.com/clairecas/raglan-api/internal/server"
	"github.com/clairecas/raglan-api/internal/token"
)

func main() {
	cfg := config.Load()

	if err := token.ValidateSecret(cfg.JWTSecret); err != nil {
		log.Fatal("❌ JWT configuration error: ", err)
	}
	log.Println("✅ JWT secret validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	// ========== MAIL SETUP ==========
	var mailer mail.Sender = mail.LogMailer{}
	if cfg.MailRegion != "" {
		sesMailer, err := mail.NewSESMailer(cfg.MailRegion, cfg.MailFrom)
		if err != nil {
			log.Fatal("❌ SES initialization failed: ", err)
		}
		mailer = sesMailer
		log.Printf("✅ SES mailer initialized (region: %s)", cfg.MailRegion)
	} else {
		log.Println("📧 MAIL_REGION not set, outgoing mail will be logged only")
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// ========== BACKGROUND JOBS ==========
	sessions := auth.NewSessionStore(db)
	resets := auth.NewResetStore(db, cfg.ResetTokenTTL)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if n, err := sessions.PurgeExpired(); err != nil {
				log.Printf("⚠️  Refresh token cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("🧹 Cleaned up %d expired refresh tokens", n)
			}

			if n, err := resets.PurgeExpired(); err != nil {
				log.Printf("⚠️  Reset token cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("🧹 Cleaned up %d expired reset tokens", n)
			}
		}
	}()

	// ========== START SERVER ==========
	app := server.New(server.Deps{
		DB:     db,
		Cfg:    cfg,
		Issuer: issuer,
		Mailer: mailer,
	})

	log.Printf("🚀 Raglan Generator API starting on %s", cfg.ServerAddr)

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server: ", err)
	}
}
