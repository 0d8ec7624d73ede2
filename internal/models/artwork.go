package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Artwork availability states.
const (
	AvailabilityAvailable = "available"
	AvailabilityAtGallery = "at_gallery"
	AvailabilityOnRequest = "on_request"
)

// DefaultArtworkImage is served when an artwork has no image of its own.
const DefaultArtworkImage = "/static/images/default-artwork.jpg"

// MinArtworkYear bounds the year an artwork may claim to be created in.
const MinArtworkYear = 1900

// Artwork is a unique physical piece belonging to exactly one artist.
// Price is required unless the piece is available on request only.
type Artwork struct {
	BaseModel
	ArtistID        uuid.UUID  `gorm:"type:uuid;index" json:"artist_id"`
	Artist          *Artist    `json:"artist,omitempty"`
	Title           string     `json:"title"`
	Availability    string     `gorm:"size:20;default:available" json:"availability"`
	Price           *float64   `json:"price"`
	DiscountedPrice *float64   `json:"discounted_price"`
	Sold            bool       `json:"sold"`
	Medium          string     `json:"medium"`
	Dimensions      string     `json:"dimensions"`
	Year            *int       `json:"year"`
	Description     string     `json:"description"`
	Image           string     `json:"image"`
	ImageURL        string     `json:"image_url"`
	IsActive        bool       `json:"is_active"`
	CreatedByID     *uuid.UUID `gorm:"type:uuid" json:"created_by_id"`
}

// BeforeSave validates price, discount and year constraints on every persist.
func (a *Artwork) BeforeSave(tx *gorm.DB) error {
	return a.Validate(time.Now())
}

// Validate checks field constraints and returns FieldErrors on violation.
func (a *Artwork) Validate(now time.Time) error {
	errs := FieldErrors{}

	if a.Title == "" {
		errs.Add("title", "Title is required.")
	}
	if a.ArtistID == uuid.Nil {
		errs.Add("artist", "Artist is required.")
	}

	switch a.Availability {
	case AvailabilityAvailable, AvailabilityAtGallery, AvailabilityOnRequest:
	default:
		errs.Add("availability", "Availability must be available, at_gallery or on_request.")
	}

	if a.Availability != AvailabilityOnRequest {
		if a.Price == nil {
			errs.Add("price", `Price is required for artworks that are not "Available on Request".`)
		} else if *a.Price <= 0 {
			errs.Add("price", "Price must be greater than 0.")
		}
	}

	if a.DiscountedPrice != nil {
		if a.Price == nil {
			errs.Add("discounted_price", "Cannot set discounted price without regular price.")
		} else if *a.DiscountedPrice >= *a.Price {
			errs.Add("discounted_price", "Discounted price must be lower than the regular price.")
		}
	}

	if a.Year != nil {
		maxYear := now.Year() + 5
		if *a.Year < MinArtworkYear || *a.Year > maxYear {
			errs.Add("year", fmt.Sprintf("Year must be between %d and %d.", MinArtworkYear, maxYear))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ShowPrice reports whether the price should be displayed.
func (a *Artwork) ShowPrice() bool {
	return a.Availability != AvailabilityOnRequest && !a.Sold
}

// AllowPurchase reports whether the piece can be bought right now.
func (a *Artwork) AllowPurchase() bool {
	return (a.Availability == AvailabilityAvailable || a.Availability == AvailabilityAtGallery) && !a.Sold
}

// AllowScheduleViewing reports whether an in-gallery viewing can be booked.
func (a *Artwork) AllowScheduleViewing() bool {
	return a.Availability == AvailabilityAtGallery && !a.Sold
}

// AllowInquiry is always true: any piece can be asked about.
func (a *Artwork) AllowInquiry() bool {
	return true
}

// HasDiscount reports whether a valid discounted price is set.
func (a *Artwork) HasDiscount() bool {
	return a.Price != nil && a.DiscountedPrice != nil && *a.DiscountedPrice < *a.Price
}

// DiscountPercentage returns the floor-truncated discount percent, zero when
// no discount applies or the price is unset.
func (a *Artwork) DiscountPercentage() int {
	if !a.HasDiscount() || *a.Price == 0 {
		return 0
	}
	return int((*a.Price - *a.DiscountedPrice) / *a.Price * 100)
}

// PrimaryImage picks the uploaded image first, then the external URL, then
// the placeholder.
func (a *Artwork) PrimaryImage() string {
	if a.Image != "" {
		return a.Image
	}
	if a.ImageURL != "" {
		return a.ImageURL
	}
	return DefaultArtworkImage
}

// CurrentPrice returns the live price used for cart and checkout sums,
// zero when the piece has no price.
func (a *Artwork) CurrentPrice() float64 {
	if a.Price == nil {
		return 0
	}
	return *a.Price
}
