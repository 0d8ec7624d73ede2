package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/config"
	"github.com/example/campsbay/internal/mailer"
	"github.com/example/campsbay/internal/models"
	"github.com/example/campsbay/internal/otp"
	"github.com/example/campsbay/internal/utils"
)

// PasswordResetHandler manages the forgot-password flow: request a code,
// verify it, then set a new password.
type PasswordResetHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	otp      *otp.Service
	mailer   mailer.Mailer
	sessions *session.Store
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, otpSvc *otp.Service, m mailer.Mailer, sessions *session.Store) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, otp: otpSvc, mailer: m, sessions: sessions}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a password-reset code for a verified account and
// records the reset reference in the session.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no account found with this email address")
		}
		return err
	}

	if !user.IsEmailVerified {
		return fiber.NewError(fiber.StatusForbidden, "please verify your email address first")
	}

	code, err := h.otp.Issue(user.ID, models.OTPPurposePasswordReset)
	if err != nil {
		return err
	}

	subject, htmlBody, textBody := mailer.PasswordResetEmail(user.FirstName, code)
	var warning string
	if err := h.mailer.Send(user.Email, subject, htmlBody, textBody); err != nil {
		log.Printf("[PasswordReset] Failed to email reset code to %s: %v", user.Email, err)
		warning = "There was an issue sending the email. You can request a new code."
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyResetUserID, user.ID.String())
	sess.Delete(keyResetVerified)
	if err := sess.Save(); err != nil {
		return err
	}

	resp := fiber.Map{"success": true, "message": "Password reset email sent! Please check your inbox."}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

type verifyResetCodeRequest struct {
	Code string `json:"code"`
}

// VerifyResetCode validates and consumes the reset code, unlocking the
// final reset step for this session.
func (h *PasswordResetHandler) VerifyResetCode(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	rawID, _ := sess.Get(keyResetUserID).(string)
	userID, parseErr := uuid.Parse(rawID)
	if rawID == "" || parseErr != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no password reset request found")
	}

	var req verifyResetCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.otp.Validate(userID, models.OTPPurposePasswordReset, req.Code)
	if err != nil {
		return otpFieldError(c, err)
	}
	if err := h.otp.Consume(record); err != nil {
		return err
	}

	sess.Set(keyResetVerified, true)
	if err := sess.Save(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified. You can now reset your password.",
	})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetPassword sets a new password once the session's reset code has been
// verified, then clears the reset state.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	verified, _ := sess.Get(keyResetVerified).(bool)
	if !verified {
		return fiber.NewError(fiber.StatusUnauthorized, "please verify OTP first")
	}

	rawID, _ := sess.Get(keyResetUserID).(string)
	userID, parseErr := uuid.Parse(rawID)
	if rawID == "" || parseErr != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no password reset request found")
	}

	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := validatePassword("new_password", req.NewPassword); errs != nil {
		return fieldErrorResponse(c, errs)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		return err
	}

	sess.Delete(keyResetUserID)
	sess.Delete(keyResetVerified)
	if err := sess.Save(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset successfully. You can now login.",
	})
}
