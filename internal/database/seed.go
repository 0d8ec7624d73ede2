package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/example/campsbay/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// Seed inserts sample catalog data when the artist table is empty. Sample
// records go through the same persistence path as real ones so the derived
// attributes and validation hooks apply to them too.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Artist{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	artists := []models.Artist{
		{
			FirstName: "Thandiwe",
			LastName:  "Mokoena",
			Location:  "Cape Town, South Africa",
			Medium:    "Oil, Acrylic",
			Style:     "Figurative",
			Theme:     "Identity, Urban Life",
			Bio:       "Thandiwe's large-scale portraits explore life in the city.",
			IsActive:  true,
		},
		{
			FirstName: "Pieter",
			LastName:  "van der Merwe",
			Location:  "Stellenbosch, South Africa",
			Medium:    "Collage, Mixed Media",
			Style:     "Contemporary",
			Theme:     "Memory",
			IsActive:  true,
		},
		{
			FirstName: "Naledi",
			Location:  "Johannesburg, South Africa",
			Medium:    "Watercolour",
			Style:     "Abstract",
			IsActive:  true,
		},
	}

	for i := range artists {
		if err := conn.Create(&artists[i]).Error; err != nil {
			return err
		}
	}

	artworks := []models.Artwork{
		{
			ArtistID:     artists[0].ID,
			Title:        "Harbour Light",
			Availability: models.AvailabilityAvailable,
			Price:        floatPtr(8500),
			Medium:       "Oil on Canvas",
			Dimensions:   "120 x 100 cm",
			Year:         intPtr(2024),
			Description:  "Morning light over the working harbour.",
			IsActive:     true,
		},
		{
			ArtistID:        artists[0].ID,
			Title:           "Table Mountain Study II",
			Availability:    models.AvailabilityAtGallery,
			Price:           floatPtr(7200),
			DiscountedPrice: floatPtr(5800),
			Medium:          "Acrylic on Board",
			Dimensions:      "60 x 45 cm",
			Year:            intPtr(2023),
			IsActive:        true,
		},
		{
			ArtistID:     artists[1].ID,
			Title:        "Paper Histories",
			Availability: models.AvailabilityOnRequest,
			Medium:       "Collage",
			Dimensions:   "90 x 90 cm",
			Year:         intPtr(2025),
			IsActive:     true,
		},
		{
			ArtistID:     artists[2].ID,
			Title:        "Highveld Storm",
			Availability: models.AvailabilityAvailable,
			Price:        floatPtr(4300),
			Medium:       "Watercolour",
			Dimensions:   "42 x 30 cm",
			IsActive:     true,
		},
	}

	for i := range artworks {
		if err := conn.Create(&artworks[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("seeded %d artists and %d artworks", len(artists), len(artworks))
	return nil
}
