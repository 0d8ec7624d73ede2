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

// AuthHandler bundles dependencies for registration, verification and login.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	otp      *otp.Service
	mailer   mailer.Mailer
	sessions *session.Store
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otpSvc *otp.Service, m mailer.Mailer, sessions *session.Store) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otp: otpSvc, mailer: m, sessions: sessions}
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates a new unverified account and emails a verification code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	errs := models.FieldErrors{}
	if req.Email == "" {
		errs.Add("email", "Email is required.")
	}
	if req.FirstName == "" {
		errs.Add("first_name", "First name is required.")
	}
	if pwErrs := validatePassword("password", req.Password); pwErrs != nil {
		for field, msgs := range pwErrs {
			errs[field] = append(errs[field], msgs...)
		}
	}
	if len(errs) > 0 {
		return fieldErrorResponse(c, errs)
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		errs.Add("email", "An account with this email already exists.")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "errors": errs})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	code, err := h.otp.Issue(user.ID, models.OTPPurposeEmailVerification)
	if err != nil {
		return err
	}

	warning := h.deliverCode(&user, code, models.OTPPurposeEmailVerification)

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyPendingUserID, user.ID.String())
	sess.Set(keyPendingUserEmail, user.Email)
	if err := sess.Save(); err != nil {
		return err
	}

	resp := fiber.Map{
		"success": true,
		"message": "Verification email sent! Please check your inbox.",
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

// VerifyEmail validates the pending account's code, flips the verified flag
// and establishes a session. The verified transition is one-way.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	pendingID, _ := sess.Get(keyPendingUserID).(string)
	if pendingID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no pending verification found, please sign up again")
	}

	userID, err := uuid.Parse(pendingID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no pending verification found, please sign up again")
	}

	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	record, err := h.otp.Validate(user.ID, models.OTPPurposeEmailVerification, req.Code)
	if err != nil {
		return otpFieldError(c, err)
	}
	if err := h.otp.Consume(record); err != nil {
		return err
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("is_email_verified", true).Error; err != nil {
		return err
	}

	sess.Delete(keyPendingUserID)
	sess.Delete(keyPendingUserEmail)
	if err := sess.Save(); err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email verified successfully! Welcome to Camps Bay Gallery.",
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing, verified user. Invalid email and invalid
// password report the same error so accounts cannot be enumerated.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	if !user.IsEmailVerified {
		return fiber.NewError(fiber.StatusForbidden, "please verify your email address first")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
		"token": token,
	})
}

type resendOTPRequest struct {
	Purpose string `json:"purpose"`
}

// ResendOTP re-issues a code for the flow pending in the session. Issuing
// sweeps all prior unused codes for the same purpose.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	var sessionKey string
	switch req.Purpose {
	case models.OTPPurposeEmailVerification:
		sessionKey = keyPendingUserID
	case models.OTPPurposePasswordReset:
		sessionKey = keyResetUserID
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown otp purpose")
	}

	rawID, _ := sess.Get(sessionKey).(string)
	userID, err := uuid.Parse(rawID)
	if rawID == "" || err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no pending request found")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	code, err := h.otp.Issue(user.ID, req.Purpose)
	if err != nil {
		return err
	}

	warning := h.deliverCode(&user, code, req.Purpose)

	resp := fiber.Map{"success": true, "message": "New code sent to your email."}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// deliverCode emails an OTP. Transport failures are downgraded to a warning;
// the issued code stays valid either way.
func (h *AuthHandler) deliverCode(user *models.User, code, purpose string) string {
	var subject, htmlBody, textBody string
	if purpose == models.OTPPurposePasswordReset {
		subject, htmlBody, textBody = mailer.PasswordResetEmail(user.FirstName, code)
	} else {
		subject, htmlBody, textBody = mailer.VerificationEmail(user.FirstName, code)
	}

	if err := h.mailer.Send(user.Email, subject, htmlBody, textBody); err != nil {
		log.Printf("[Auth] Failed to email %s code to %s: %v", purpose, user.Email, err)
		return "There was an issue sending the email. You can request a new code."
	}
	return ""
}

// otpFieldError renders OTP validation failures as field errors on otp_code.
func otpFieldError(c *fiber.Ctx, err error) error {
	errs := models.FieldErrors{}
	switch {
	case errors.Is(err, otp.ErrOTPExpired):
		errs.Add("otp_code", "OTP has expired. Please request a new one.")
	case errors.Is(err, otp.ErrOTPNotFound):
		errs.Add("otp_code", "Invalid OTP code. Please check and try again.")
	default:
		return err
	}
	return fieldErrorResponse(c, errs)
}
