package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/models"
	"github.com/example/campsbay/internal/utils"
)

// ArtistHandler serves the public artist pages and the owner-side CRUD.
type ArtistHandler struct {
	db *gorm.DB
}

// NewArtistHandler constructs an ArtistHandler.
func NewArtistHandler(db *gorm.DB) *ArtistHandler {
	return &ArtistHandler{db: db}
}

// artistView is the serialized artist with its derived display attributes.
type artistView struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Location string    `json:"location"`
	Medium   string    `json:"medium"`
	Style    string    `json:"style"`
	Theme    string    `json:"theme"`
	Bio      string    `json:"bio"`
	Image    string    `json:"image"`
	IsActive bool      `json:"is_active"`
}

func newArtistView(artist *models.Artist) artistView {
	return artistView{
		ID:       artist.ID,
		FullName: artist.FullName(),
		Location: artist.Location,
		Medium:   artist.Medium,
		Style:    artist.Style,
		Theme:    artist.Theme,
		Bio:      artist.Bio,
		Image:    artist.PrimaryImage(),
		IsActive: artist.IsActive,
	}
}

// ListArtists returns active artists, optionally filtered by a name search.
func (h *ArtistHandler) ListArtists(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	query := h.db.Model(&models.Artist{}).Where("is_active = ?", true)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var artists []models.Artist
	err := query.Order("first_name, last_name").
		Limit(pagination.Limit).
		Offset(pagination.Offset).
		Find(&artists).Error
	if err != nil {
		return err
	}

	views := make([]artistView, 0, len(artists))
	for i := range artists {
		views = append(views, newArtistView(&artists[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    views,
		"pagination": fiber.Map{
			"page":  pagination.Page,
			"limit": pagination.Limit,
			"total": total,
		},
	})
}

// GetArtist returns one active artist with their active, unsold-first artworks.
func (h *ArtistHandler) GetArtist(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid artist id")
	}

	var artist models.Artist
	err = h.db.Preload("Artworks", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Order("sold, created_at DESC")
	}).First(&artist, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "artist not found")
		}
		return err
	}

	artworks := make([]artworkView, 0, len(artist.Artworks))
	for i := range artist.Artworks {
		artist.Artworks[i].Artist = &artist
		artworks = append(artworks, newArtworkView(&artist.Artworks[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"artist":   newArtistView(&artist),
			"artworks": artworks,
		},
	})
}

type artistRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Location       *string `json:"location"`
	Medium         *string `json:"medium"`
	Style          *string `json:"style"`
	Theme          *string `json:"theme"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
	ImageURL       *string `json:"image_url"`
	IsActive       *bool   `json:"is_active"`
}

func (r *artistRequest) apply(artist *models.Artist) {
	if r.FirstName != nil {
		artist.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		artist.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.Location != nil {
		artist.Location = *r.Location
	}
	if r.Medium != nil {
		artist.Medium = *r.Medium
	}
	if r.Style != nil {
		artist.Style = *r.Style
	}
	if r.Theme != nil {
		artist.Theme = *r.Theme
	}
	if r.Bio != nil {
		artist.Bio = *r.Bio
	}
	if r.ProfilePicture != nil {
		artist.ProfilePicture = *r.ProfilePicture
	}
	if r.ImageURL != nil {
		artist.ImageURL = *r.ImageURL
	}
	if r.IsActive != nil {
		artist.IsActive = *r.IsActive
	}
}

// CreateArtist adds an artist. Owner only.
func (h *ArtistHandler) CreateArtist(c *fiber.Ctx) error {
	var req artistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	artist := models.Artist{IsActive: true}
	req.apply(&artist)

	if artist.FirstName == "" {
		errs := models.FieldErrors{}
		errs.Add("first_name", "First name is required.")
		return fieldErrorResponse(c, errs)
	}

	if err := h.db.Create(&artist).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    newArtistView(&artist),
	})
}

// UpdateArtist applies a partial update to an artist. Owner only.
func (h *ArtistHandler) UpdateArtist(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid artist id")
	}

	var artist models.Artist
	if err := h.db.First(&artist, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "artist not found")
		}
		return err
	}

	var req artistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.apply(&artist)
	if artist.FirstName == "" {
		errs := models.FieldErrors{}
		errs.Add("first_name", "First name is required.")
		return fieldErrorResponse(c, errs)
	}

	if err := h.db.Save(&artist).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    newArtistView(&artist),
	})
}

// DeleteArtist deactivates an artist and their artworks rather than deleting
// rows, so past orders keep their references. Owner only.
func (h *ArtistHandler) DeleteArtist(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid artist id")
	}

	var artist models.Artist
	if err := h.db.First(&artist, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "artist not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Artist{}).
			Where("id = ?", artist.ID).
			UpdateColumn("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Artwork{}).
			Where("artist_id = ?", artist.ID).
			UpdateColumn("is_active", false).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Artist deactivated.",
	})
}
