package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/campsbay/internal/models"
)

// Session keys for pending authentication flows.
const (
	keyPendingUserID    = "pending_user_id"
	keyPendingUserEmail = "pending_user_email"
	keyResetUserID      = "reset_user_id"
	keyResetVerified    = "reset_verified"
)

// fieldErrorResponse renders field-scoped validation failures so callers can
// display them per field.
func fieldErrorResponse(c *fiber.Ctx, errs models.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"errors":  errs,
	})
}

// respondError maps validation errors to field responses and passes
// everything else to fiber's error handler.
func respondError(c *fiber.Ctx, err error) error {
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrorResponse(c, fieldErrs)
	}
	return err
}

// validatePassword enforces the signup password policy: at least eight
// characters with an uppercase letter, a lowercase letter and a digit.
func validatePassword(field, password string) models.FieldErrors {
	errs := models.FieldErrors{}

	if len(password) < 8 {
		errs.Add(field, "Password must be at least 8 characters long.")
		return errs
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	if !hasUpper {
		errs.Add(field, "Password must contain at least one uppercase letter.")
	}
	if !hasLower {
		errs.Add(field, "Password must contain at least one lowercase letter.")
	}
	if !hasDigit {
		errs.Add(field, "Password must contain at least one number.")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
