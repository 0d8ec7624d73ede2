package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/middleware"
	"github.com/example/campsbay/internal/models"
	"github.com/example/campsbay/internal/utils"
)

// ArtworkHandler serves the public catalog and the owner-side artwork CRUD.
type ArtworkHandler struct {
	db *gorm.DB
}

// NewArtworkHandler constructs an ArtworkHandler.
func NewArtworkHandler(db *gorm.DB) *ArtworkHandler {
	return &ArtworkHandler{db: db}
}

// artworkView serializes an artwork with all derived display attributes
// recomputed at read time.
type artworkView struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	ArtistID             uuid.UUID `json:"artist_id"`
	ArtistName           string    `json:"artist_name"`
	Availability         string    `json:"availability"`
	Sold                 bool      `json:"sold"`
	Price                *float64  `json:"price"`
	DiscountedPrice      *float64  `json:"discounted_price"`
	ShowPrice            bool      `json:"show_price"`
	HasDiscount          bool      `json:"has_discount"`
	DiscountPercentage   int       `json:"discount_percentage"`
	AllowPurchase        bool      `json:"allow_purchase"`
	AllowInquiry         bool      `json:"allow_inquiry"`
	AllowScheduleViewing bool      `json:"allow_schedule_viewing"`
	Medium               string    `json:"medium"`
	Dimensions           string    `json:"dimensions"`
	Year                 *int      `json:"year"`
	Description          string    `json:"description"`
	Image                string    `json:"image"`
	IsActive             bool      `json:"is_active"`
}

func newArtworkView(artwork *models.Artwork) artworkView {
	view := artworkView{
		ID:                   artwork.ID,
		Title:                artwork.Title,
		ArtistID:             artwork.ArtistID,
		Availability:         artwork.Availability,
		Sold:                 artwork.Sold,
		Price:                artwork.Price,
		DiscountedPrice:      artwork.DiscountedPrice,
		ShowPrice:            artwork.ShowPrice(),
		HasDiscount:          artwork.HasDiscount(),
		DiscountPercentage:   artwork.DiscountPercentage(),
		AllowPurchase:        artwork.AllowPurchase(),
		AllowInquiry:         artwork.AllowInquiry(),
		AllowScheduleViewing: artwork.AllowScheduleViewing(),
		Medium:               artwork.Medium,
		Dimensions:           artwork.Dimensions,
		Year:                 artwork.Year,
		Description:          artwork.Description,
		Image:                artwork.PrimaryImage(),
		IsActive:             artwork.IsActive,
	}
	if artwork.Artist != nil {
		view.ArtistName = artwork.Artist.FullName()
	}
	return view
}

// sortOrder maps the public sort keys to SQL order clauses. Unknown keys fall
// back to newest first.
func sortOrder(sort string) string {
	switch sort {
	case "oldest":
		return "created_at"
	case "title_asc":
		return "title"
	case "title_desc":
		return "title DESC"
	case "price_low":
		return "price"
	case "price_high":
		return "price DESC"
	default:
		return "created_at DESC"
	}
}

// ListArtworks returns the active catalog with search, filters, sorting and
// pagination.
func (h *ArtworkHandler) ListArtworks(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	query := h.db.Model(&models.Artwork{}).
		Joins("LEFT JOIN artists ON artists.id = artworks.artist_id").
		Where("artworks.is_active = ?", true)

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(artworks.title) LIKE ? OR LOWER(artists.first_name) LIKE ? OR LOWER(artists.last_name) LIKE ? OR LOWER(artworks.description) LIKE ? OR LOWER(artworks.medium) LIKE ?",
			like, like, like, like, like)
	}
	if artistID := c.Query("artist"); artistID != "" {
		id, err := uuid.Parse(artistID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid artist filter")
		}
		query = query.Where("artworks.artist_id = ?", id)
	}
	if medium := strings.TrimSpace(c.Query("medium")); medium != "" {
		query = query.Where("LOWER(artworks.medium) = ?", strings.ToLower(medium))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var artworks []models.Artwork
	err := query.Preload("Artist").
		Order("artworks." + sortOrder(c.Query("sort", "newest"))).
		Limit(pagination.Limit).
		Offset(pagination.Offset).
		Find(&artworks).Error
	if err != nil {
		return err
	}

	views := make([]artworkView, 0, len(artworks))
	for i := range artworks {
		views = append(views, newArtworkView(&artworks[i]))
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

// GetArtwork returns one active artwork with its derived attributes.
func (h *ArtworkHandler) GetArtwork(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid artwork id")
	}

	var artwork models.Artwork
	err = h.db.Preload("Artist").First(&artwork, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "artwork not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    newArtworkView(&artwork),
	})
}

type artworkRequest struct {
	ArtistID        *uuid.UUID `json:"artist_id"`
	Title           *string    `json:"title"`
	Availability    *string    `json:"availability"`
	Price           *float64   `json:"price"`
	DiscountedPrice *float64   `json:"discounted_price"`
	Medium          *string    `json:"medium"`
	Dimensions      *string    `json:"dimensions"`
	Year            *int       `json:"year"`
	Description     *string    `json:"description"`
	Image           *string    `json:"image"`
	ImageURL        *string    `json:"image_url"`
	IsActive        *bool      `json:"is_active"`
}

func (r *artworkRequest) apply(artwork *models.Artwork) {
	if r.ArtistID != nil {
		artwork.ArtistID = *r.ArtistID
	}
	if r.Title != nil {
		artwork.Title = strings.TrimSpace(*r.Title)
	}
	if r.Availability != nil {
		artwork.Availability = *r.Availability
	}
	if r.Price != nil {
		artwork.Price = r.Price
	}
	if r.DiscountedPrice != nil {
		artwork.DiscountedPrice = r.DiscountedPrice
	}
	if r.Medium != nil {
		artwork.Medium = *r.Medium
	}
	if r.Dimensions != nil {
		artwork.Dimensions = *r.Dimensions
	}
	if r.Year != nil {
		artwork.Year = r.Year
	}
	if r.Description != nil {
		artwork.Description = *r.Description
	}
	if r.Image != nil {
		artwork.Image = *r.Image
	}
	if r.ImageURL != nil {
		artwork.ImageURL = *r.ImageURL
	}
	if r.IsActive != nil {
		artwork.IsActive = *r.IsActive
	}
}

// CreateArtwork adds an artwork to the catalog. Owner only. Field constraints
// are enforced by the model's save hook.
func (h *ArtworkHandler) CreateArtwork(c *fiber.Ctx) error {
	var req artworkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	artwork := models.Artwork{
		Availability: models.AvailabilityAvailable,
		IsActive:     true,
	}
	req.apply(&artwork)

	if userID, ok := middleware.GetCurrentUserID(c); ok {
		artwork.CreatedByID = &userID
	}

	if artwork.ArtistID != uuid.Nil {
		var artist models.Artist
		if err := h.db.First(&artist, "id = ?", artwork.ArtistID).Error; err != nil {
			errs := models.FieldErrors{}
			errs.Add("artist", "Artist not found.")
			return fieldErrorResponse(c, errs)
		}
		artwork.Artist = &artist
	}

	if err := h.db.Create(&artwork).Error; err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    newArtworkView(&artwork),
	})
}

// UpdateArtwork applies a partial update. Owner only.
func (h *ArtworkHandler) UpdateArtwork(c *fiber.Ctx) error {
	artwork, err := h.load(c)
	if err != nil {
		return err
	}

	var req artworkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.apply(artwork)

	if err := h.db.Save(artwork).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    newArtworkView(artwork),
	})
}

// DeleteArtwork deactivates an artwork. Owner only.
func (h *ArtworkHandler) DeleteArtwork(c *fiber.Ctx) error {
	artwork, err := h.load(c)
	if err != nil {
		return err
	}

	if err := h.db.Model(artwork).UpdateColumn("is_active", false).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Artwork deactivated.",
	})
}

// MarkSold flags an artwork as sold, e.g. after an in-gallery sale. Owner
// only. Marking an already sold piece is a no-op.
func (h *ArtworkHandler) MarkSold(c *fiber.Ctx) error {
	artwork, err := h.load(c)
	if err != nil {
		return err
	}

	if err := h.db.Model(artwork).UpdateColumn("sold", true).Error; err != nil {
		return err
	}
	artwork.Sold = true

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Artwork marked as sold.",
		"data":    newArtworkView(artwork),
	})
}

// MarkAvailable returns a piece to the storefront: the sold flag is cleared,
// the piece is reactivated and availability resets to available. Owner only.
func (h *ArtworkHandler) MarkAvailable(c *fiber.Ctx) error {
	artwork, err := h.load(c)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"sold":         false,
		"is_active":    true,
		"availability": models.AvailabilityAvailable,
	}
	if err := h.db.Model(artwork).UpdateColumns(updates).Error; err != nil {
		return err
	}
	artwork.Sold = false
	artwork.IsActive = true
	artwork.Availability = models.AvailabilityAvailable

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Artwork marked as available.",
		"data":    newArtworkView(artwork),
	})
}

func (h *ArtworkHandler) load(c *fiber.Ctx) (*models.Artwork, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid artwork id")
	}

	var artwork models.Artwork
	if err := h.db.Preload("Artist").First(&artwork, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "artwork not found")
		}
		return nil, err
	}
	return &artwork, nil
}
