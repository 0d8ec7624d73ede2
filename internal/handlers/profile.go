package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/middleware"
	"github.com/example/campsbay/internal/models"
)

// ProfileHandler serves the authenticated account and profile endpoints.
// Profiles are created lazily on first access rather than at signup.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the current user and their profile, creating an empty
// profile on first read.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := h.getOrCreate(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":    user,
			"profile": profile,
		},
	})
}

type updateProfileRequest struct {
	FirstName              *string `json:"first_name"`
	LastName               *string `json:"last_name"`
	Bio                    *string `json:"bio"`
	Address                *string `json:"address"`
	City                   *string `json:"city"`
	Country                *string `json:"country"`
	NewsletterSubscription *bool   `json:"newsletter_subscription"`
}

// UpdateProfile applies a partial update to the user's name and profile.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.getOrCreate(userID)
	if err != nil {
		return err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.Country != nil {
		profile.Country = *req.Country
	}
	if req.NewsletterSubscription != nil {
		profile.NewsletterSubscription = *req.NewsletterSubscription
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Save(profile).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated.",
		"data": fiber.Map{
			"user":    user,
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) getOrCreate(userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := h.db.First(&profile, "user_id = ?", userID).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.UserProfile{UserID: userID, NewsletterSubscription: true}
	if err := h.db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
