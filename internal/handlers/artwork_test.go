package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func setupCatalogApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Artist{}, &models.Artwork{}))

	handler := NewArtworkHandler(db)
	app := fiber.New()
	app.Get("/artworks", handler.ListArtworks)
	app.Get("/artworks/:id", handler.GetArtwork)
	app.Post("/artworks/:id/mark-sold", handler.MarkSold)
	app.Post("/artworks/:id/mark-available", handler.MarkAvailable)

	return app, db
}

func seedCatalog(t *testing.T, db *gorm.DB) (*models.Artist, []*models.Artwork) {
	t.Helper()

	artist := models.Artist{FirstName: "Thandi", LastName: "Ngwenya", IsActive: true}
	require.NoError(t, db.Create(&artist).Error)

	pieces := []*models.Artwork{
		{ArtistID: artist.ID, Title: "Atlantic Light", Availability: models.AvailabilityAvailable, Price: floatPtr(7200), DiscountedPrice: floatPtr(5800), Medium: "Oil on canvas", IsActive: true},
		{ArtistID: artist.ID, Title: "Bo-Kaap Steps", Availability: models.AvailabilityAtGallery, Price: floatPtr(3100), Medium: "Watercolour", IsActive: true},
		{ArtistID: artist.ID, Title: "Hidden Study", Availability: models.AvailabilityAvailable, Price: floatPtr(900), Medium: "Charcoal", IsActive: false},
	}
	for _, p := range pieces {
		require.NoError(t, db.Create(p).Error)
	}
	return &artist, pieces
}

func getJSON(t *testing.T, app *fiber.App, path string) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		payload = map[string]interface{}{"message": string(data)}
	}
	return resp, payload
}

func TestCreatePreservesInactiveFlag(t *testing.T) {
	_, db := setupCatalogApp(t)
	_, pieces := seedCatalog(t, db)

	// A piece created inactive must stay inactive in the database, not be
	// flipped by a column default.
	var got models.Artwork
	require.NoError(t, db.First(&got, "id = ?", pieces[2].ID).Error)
	assert.False(t, got.IsActive)

	artist := models.Artist{FirstName: "Quiet", IsActive: false}
	require.NoError(t, db.Create(&artist).Error)
	var gotArtist models.Artist
	require.NoError(t, db.First(&gotArtist, "id = ?", artist.ID).Error)
	assert.False(t, gotArtist.IsActive)
}

func TestListArtworksHidesInactive(t *testing.T) {
	app, db := setupCatalogApp(t)
	seedCatalog(t, db)

	resp, payload := getJSON(t, app, "/artworks")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := payload["data"].([]interface{})
	require.Len(t, items, 2)
	for _, raw := range items {
		item := raw.(map[string]interface{})
		assert.NotEqual(t, "Hidden Study", item["title"])
	}
}

func TestListArtworksFiltersAndSorts(t *testing.T) {
	app, db := setupCatalogApp(t)
	seedCatalog(t, db)

	resp, payload := getJSON(t, app, "/artworks?medium=watercolour")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := payload["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Bo-Kaap Steps", items[0].(map[string]interface{})["title"])

	resp, payload = getJSON(t, app, "/artworks?q=atlantic")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items = payload["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Atlantic Light", items[0].(map[string]interface{})["title"])

	resp, payload = getJSON(t, app, "/artworks?sort=price_low")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items = payload["data"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "Bo-Kaap Steps", items[0].(map[string]interface{})["title"])
	assert.Equal(t, "Atlantic Light", items[1].(map[string]interface{})["title"])
}

func TestGetArtworkReportsDerivedAttributes(t *testing.T) {
	app, db := setupCatalogApp(t)
	_, pieces := seedCatalog(t, db)

	resp, payload := getJSON(t, app, "/artworks/"+pieces[0].ID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "Atlantic Light", data["title"])
	assert.Equal(t, "Thandi Ngwenya", data["artist_name"])
	assert.Equal(t, true, data["show_price"])
	assert.Equal(t, true, data["has_discount"])
	assert.Equal(t, float64(19), data["discount_percentage"])
	assert.Equal(t, true, data["allow_purchase"])
	assert.Equal(t, models.DefaultArtworkImage, data["image"])
}

func TestGetArtworkNotFoundForInactive(t *testing.T) {
	app, db := setupCatalogApp(t)
	_, pieces := seedCatalog(t, db)

	resp, _ := getJSON(t, app, "/artworks/"+pieces[2].ID.String())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMarkSoldAndMarkAvailable(t *testing.T) {
	app, db := setupCatalogApp(t)
	_, pieces := seedCatalog(t, db)
	piece := pieces[1]

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/artworks/"+piece.ID.String()+"/mark-sold", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Artwork
	require.NoError(t, db.First(&got, "id = ?", piece.ID).Error)
	assert.True(t, got.Sold)

	// Marking an already sold piece again is a no-op, not an error.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/artworks/"+piece.ID.String()+"/mark-sold", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Returning the piece clears the sold flag and resets availability.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/artworks/"+piece.ID.String()+"/mark-available", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&got, "id = ?", piece.ID).Error)
	assert.False(t, got.Sold)
	assert.True(t, got.IsActive)
	assert.Equal(t, models.AvailabilityAvailable, got.Availability)
}
