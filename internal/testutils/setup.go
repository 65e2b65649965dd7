package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/clairecas/raglan-api/internal/config"
	"github.com/clairecas/raglan-api/internal/models"
	"github.com/clairecas/raglan-api/internal/server"
	"github.com/clairecas/raglan-api/internal/token"
	"github.com/clairecas/raglan-api/internal/utils"
)

// Env is a fully wired app over an in-memory database with a recording
// mailer, one per test.
type Env struct {
	App    *fiber.App
	DB     *gorm.DB
	Cfg    *config.Config
	Issuer *token.Issuer
	Mailer *FakeMailer
}

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Pattern{},
		&models.RefreshToken{},
		&models.ResetToken{},
		&models.PasswordResetToken{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

func Setup(t *testing.T) *Env {
	db := TestDB(t)
	cfg := config.Test()
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := &FakeMailer{}

	app := server.New(server.Deps{
		DB:     db,
		Cfg:    cfg,
		Issuer: issuer,
		Mailer: mailer,
	})

	return &Env{App: app, DB: db, Cfg: cfg, Issuer: issuer, Mailer: mailer}
}

// SentMail records one call to the mailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// FakeMailer records outgoing mail instead of sending it. Set Err to force
// the send-failure paths.
type FakeMailer struct {
	Sent []SentMail
	Err  error
}

func (m *FakeMailer) Send(to, subject, htmlBody string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Request runs one request through the app and returns the raw response so
// callers can inspect Set-Cookie headers.
func (e *Env) Request(t *testing.T, method, url string, body interface{}, cookies ...*http.Cookie) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := e.App.Test(req, -1)
	assert.NoError(t, err, "Request failed")

	return resp
}

func ParseResponse(t *testing.T, resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	assert.NoError(t, err, "Failed to parse response")
}

// Message decodes the body and returns its message field.
func Message(t *testing.T, resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	ParseResponse(t, resp, &body)
	return body.Message
}

// Cookie returns the named cookie set by the response, or nil.
func Cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// CreateUser inserts a user directly, bypassing the register endpoint.
func (e *Env) CreateUser(t *testing.T, username, email, password string) *models.User {
	hashed, err := utils.HashPassword(password)
	assert.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashed,
	}
	err = e.DB.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	return user
}

// SignIn signs the user in through the real endpoint and returns the
// DEVICE_ID, ACCESS_TOKEN and REFRESH_TOKEN cookies for follow-up requests.
func (e *Env) SignIn(t *testing.T, email, password string) []*http.Cookie {
	resp := e.Request(t, "POST", "/api/authentication", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, 201, resp.StatusCode, "Sign-in failed")
	resp.Body.Close()

	cookies := resp.Cookies()
	assert.NotNil(t, Cookie(resp, "DEVICE_ID"))
	assert.NotNil(t, Cookie(resp, "ACCESS_TOKEN"))
	assert.NotNil(t, Cookie(resp, "REFRESH_TOKEN"))

	return cookies
}
