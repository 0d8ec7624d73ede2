package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validArtwork() *Artwork {
	return &Artwork{
		ArtistID:     uuid.New(),
		Title:        "Table Mountain at Dusk",
		Availability: AvailabilityAvailable,
		Price:        floatPtr(7200),
		IsActive:     true,
	}
}

func TestArtworkValidate(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mutate   func(a *Artwork)
		wantField string
	}{
		{
			name:   "valid artwork passes",
			mutate: func(a *Artwork) {},
		},
		{
			name:      "title required",
			mutate:    func(a *Artwork) { a.Title = "" },
			wantField: "title",
		},
		{
			name:      "artist required",
			mutate:    func(a *Artwork) { a.ArtistID = uuid.Nil },
			wantField: "artist",
		},
		{
			name:      "unknown availability rejected",
			mutate:    func(a *Artwork) { a.Availability = "maybe" },
			wantField: "availability",
		},
		{
			name:      "price required when not on request",
			mutate:    func(a *Artwork) { a.Price = nil },
			wantField: "price",
		},
		{
			name: "price optional when on request",
			mutate: func(a *Artwork) {
				a.Availability = AvailabilityOnRequest
				a.Price = nil
			},
		},
		{
			name:      "zero price rejected",
			mutate:    func(a *Artwork) { a.Price = floatPtr(0) },
			wantField: "price",
		},
		{
			name:      "discount must be below price",
			mutate:    func(a *Artwork) { a.DiscountedPrice = floatPtr(7200) },
			wantField: "discounted_price",
		},
		{
			name: "discount without price rejected",
			mutate: func(a *Artwork) {
				a.Availability = AvailabilityOnRequest
				a.Price = nil
				a.DiscountedPrice = floatPtr(100)
			},
			wantField: "discounted_price",
		},
		{
			name:      "year before 1900 rejected",
			mutate:    func(a *Artwork) { a.Year = intPtr(1899) },
			wantField: "year",
		},
		{
			name:      "year too far in future rejected",
			mutate:    func(a *Artwork) { a.Year = intPtr(2032) },
			wantField: "year",
		},
		{
			name:   "year five years out accepted",
			mutate: func(a *Artwork) { a.Year = intPtr(2031) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artwork := validArtwork()
			tt.mutate(artwork)

			err := artwork.Validate(now)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var fieldErrs FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Contains(t, fieldErrs, tt.wantField)
		})
	}
}

func TestArtworkDiscountPercentage(t *testing.T) {
	artwork := validArtwork()
	artwork.DiscountedPrice = floatPtr(5800)

	assert.True(t, artwork.HasDiscount())
	// 19.44% floors to 19.
	assert.Equal(t, 19, artwork.DiscountPercentage())
}

func TestArtworkDiscountPercentageGuards(t *testing.T) {
	artwork := validArtwork()
	assert.False(t, artwork.HasDiscount())
	assert.Equal(t, 0, artwork.DiscountPercentage())

	artwork.Price = nil
	artwork.DiscountedPrice = floatPtr(100)
	assert.Equal(t, 0, artwork.DiscountPercentage())
}

func TestArtworkDisplayFlags(t *testing.T) {
	artwork := validArtwork()

	assert.True(t, artwork.ShowPrice())
	assert.True(t, artwork.AllowPurchase())
	assert.False(t, artwork.AllowScheduleViewing())
	assert.True(t, artwork.AllowInquiry())

	artwork.Availability = AvailabilityAtGallery
	assert.True(t, artwork.AllowPurchase())
	assert.True(t, artwork.AllowScheduleViewing())

	artwork.Availability = AvailabilityOnRequest
	assert.False(t, artwork.ShowPrice())
	assert.False(t, artwork.AllowPurchase())
	assert.True(t, artwork.AllowInquiry())

	artwork.Availability = AvailabilityAvailable
	artwork.Sold = true
	assert.False(t, artwork.ShowPrice())
	assert.False(t, artwork.AllowPurchase())
	assert.False(t, artwork.AllowScheduleViewing())
	assert.True(t, artwork.AllowInquiry())
}

func TestArtworkPrimaryImage(t *testing.T) {
	artwork := validArtwork()
	assert.Equal(t, DefaultArtworkImage, artwork.PrimaryImage())

	artwork.ImageURL = "https://cdn.example.com/a.jpg"
	assert.Equal(t, "https://cdn.example.com/a.jpg", artwork.PrimaryImage())

	artwork.Image = "/uploads/a.jpg"
	assert.Equal(t, "/uploads/a.jpg", artwork.PrimaryImage())
}

func TestArtistFullName(t *testing.T) {
	artist := &Artist{FirstName: "Thandi"}
	assert.Equal(t, "Thandi", artist.FullName())

	artist.LastName = "Ngwenya"
	assert.Equal(t, "Thandi Ngwenya", artist.FullName())
}
