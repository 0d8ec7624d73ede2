package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/config"
	"github.com/example/campsbay/internal/models"
	"github.com/example/campsbay/internal/otp"
)

type noopMailer struct{}

func (noopMailer) Send(to, subject, htmlBody, textBody string) error { return nil }

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	cookie string
}

func setupAuthApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.OTP{}))

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
	}
	sessions := session.New()
	otpService := otp.NewService(db)
	handler := NewAuthHandler(db, cfg, otpService, noopMailer{}, sessions)
	resetHandler := NewPasswordResetHandler(db, cfg, otpService, noopMailer{}, sessions)

	app := fiber.New()
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/verify-email", handler.VerifyEmail)
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/forgot-password", resetHandler.ForgotPassword)
	app.Post("/auth/verify-reset-code", resetHandler.VerifyResetCode)
	app.Post("/auth/reset-password", resetHandler.ResetPassword)

	return &testEnv{app: app, db: db}
}

// do posts a JSON body, carrying the session cookie across requests.
func (e *testEnv) do(t *testing.T, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	if e.cookie != "" {
		req.Header.Set("Cookie", e.cookie)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	if cookie := resp.Header.Get("Set-Cookie"); cookie != "" {
		e.cookie = cookie
	}

	// Error responses from fiber's default handler are plain text.
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		payload = map[string]interface{}{"message": string(data)}
	}
	return resp, payload
}

func (e *testEnv) latestCode(t *testing.T, purpose string) string {
	t.Helper()

	var record models.OTP
	require.NoError(t, e.db.
		Where("purpose = ? AND is_used = ?", purpose, false).
		Order("created_at DESC").
		First(&record).Error)
	return record.Code
}

func TestValidatePasswordReportsEveryViolation(t *testing.T) {
	// A password can break several rules at once; all of them are reported.
	errs := validatePassword("password", "alllowercase")
	require.NotNil(t, errs)
	require.Len(t, errs["password"], 2)
	assert.Contains(t, errs["password"][0], "uppercase")
	assert.Contains(t, errs["password"][1], "number")

	// Too-short passwords report length alone.
	errs = validatePassword("password", "Ab1")
	require.NotNil(t, errs)
	require.Len(t, errs["password"], 1)
	assert.Contains(t, errs["password"][0], "at least 8 characters")

	assert.Nil(t, validatePassword("password", "Sunset123"))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	env := setupAuthApp(t)

	resp, payload := env.do(t, "/auth/register", fiber.Map{
		"email":      "lerato@example.com",
		"first_name": "Lerato",
		"password":   "short",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	errs := payload["errors"].(map[string]interface{})
	assert.Contains(t, errs, "password")
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	env := setupAuthApp(t)

	resp, _ := env.do(t, "/auth/register", fiber.Map{
		"email":      "Lerato@Example.com",
		"first_name": "Lerato",
		"last_name":  "Dlamini",
		"password":   "Sunset123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Email is normalized and the account starts unverified.
	var user models.User
	require.NoError(t, env.db.First(&user, "email = ?", "lerato@example.com").Error)
	assert.False(t, user.IsEmailVerified)
	assert.Equal(t, models.RoleCustomer, user.Role)

	// Login before verification is refused.
	resp, _ = env.do(t, "/auth/login", fiber.Map{
		"email":    "lerato@example.com",
		"password": "Sunset123",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A wrong code leaves the account unverified.
	code := env.latestCode(t, models.OTPPurposeEmailVerification)
	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	resp, _ = env.do(t, "/auth/verify-email", fiber.Map{"code": wrong})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, env.db.First(&user, "email = ?", "lerato@example.com").Error)
	assert.False(t, user.IsEmailVerified)

	// The right code verifies and returns a token.
	resp, payload := env.do(t, "/auth/verify-email", fiber.Map{"code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, payload["token"])

	require.NoError(t, env.db.First(&user, "email = ?", "lerato@example.com").Error)
	assert.True(t, user.IsEmailVerified)

	// Login now succeeds.
	resp, payload = env.do(t, "/auth/login", fiber.Map{
		"email":    "lerato@example.com",
		"password": "Sunset123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, payload["token"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupAuthApp(t)

	body := fiber.Map{
		"email":      "lerato@example.com",
		"first_name": "Lerato",
		"password":   "Sunset123",
	}
	resp, _ := env.do(t, "/auth/register", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, payload := env.do(t, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errs := payload["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
}

func TestLoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	env := setupAuthApp(t)

	resp, _ := env.do(t, "/auth/register", fiber.Map{
		"email":      "lerato@example.com",
		"first_name": "Lerato",
		"password":   "Sunset123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	unknown, unknownPayload := env.do(t, "/auth/login", fiber.Map{
		"email":    "nobody@example.com",
		"password": "Sunset123",
	})
	badPassword, badPasswordPayload := env.do(t, "/auth/login", fiber.Map{
		"email":    "lerato@example.com",
		"password": "WrongPass1",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, badPassword.StatusCode)
	assert.Equal(t, unknownPayload["message"], badPasswordPayload["message"])
}

func TestForgotPasswordFlow(t *testing.T) {
	env := setupAuthApp(t)

	// Unknown accounts are reported as such.
	resp, _ := env.do(t, "/auth/forgot-password", fiber.Map{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, "/auth/register", fiber.Map{
		"email":      "lerato@example.com",
		"first_name": "Lerato",
		"password":   "Sunset123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Unverified accounts cannot start a reset.
	resp, _ = env.do(t, "/auth/forgot-password", fiber.Map{"email": "lerato@example.com"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	code := env.latestCode(t, models.OTPPurposeEmailVerification)
	resp, _ = env.do(t, "/auth/verify-email", fiber.Map{"code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, "/auth/forgot-password", fiber.Map{"email": "lerato@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Resetting before verifying the code is refused.
	resp, _ = env.do(t, "/auth/reset-password", fiber.Map{"new_password": "NewSunset1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resetCode := env.latestCode(t, models.OTPPurposePasswordReset)
	resp, _ = env.do(t, "/auth/verify-reset-code", fiber.Map{"code": resetCode})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, "/auth/reset-password", fiber.Map{"new_password": "NewSunset1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The old password is dead, the new one works.
	resp, _ = env.do(t, "/auth/login", fiber.Map{
		"email":    "lerato@example.com",
		"password": "Sunset123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, "/auth/login", fiber.Map{
		"email":    "lerato@example.com",
		"password": "NewSunset1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
