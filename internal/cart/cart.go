// Package cart manages the session-scoped shopping cart. Each artwork is a
// unique physical object, so a cart holds at most one line item per artwork
// and quantities are clamped to one.
package cart

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/models"
)

// Session keys used by the cart and checkout pipeline.
const (
	KeyCart          = "cart"
	KeyQuickPurchase = "quick_purchase"
	KeyGuestItem     = "guest_checkout_item"
)

// Totals constants: flat shipping fee and tax rate applied to every order.
const (
	ShippingFee = 500.0
	TaxRate     = 0.15
)

var (
	// ErrArtworkNotFound means the artwork does not exist or is inactive.
	ErrArtworkNotFound = errors.New("cart: artwork not found")
	// ErrArtworkUnavailable means the artwork is sold.
	ErrArtworkUnavailable = errors.New("cart: artwork unavailable")
)

// Session is the slice of session behaviour the cart needs. Fiber's
// *session.Session satisfies it.
type Session interface {
	Get(key string) interface{}
	Set(key string, value interface{})
	Delete(key string)
}

// Item is one cart line: an add-time snapshot of the artwork plus quantity.
type Item struct {
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Price    float64   `json:"price"`
	Image    string    `json:"image"`
}

// Contents maps artwork id to its line item.
type Contents map[string]Item

// ViewItem pairs the live artwork with its cart line for display.
type ViewItem struct {
	Artwork   *models.Artwork
	Quantity  int
	ItemTotal float64
}

// AddMode selects between the normal cart path and quick purchase.
type AddMode int

const (
	// ModeNormal appends a line item to the cart.
	ModeNormal AddMode = iota
	// ModeQuickPurchase bypasses the cart and stores a single pending
	// purchase reference in the session.
	ModeQuickPurchase
)

// GuestItem is the denormalized snapshot stored for guests using quick
// purchase, who have no account to attach a cart to.
type GuestItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Price      float64 `json:"price"`
	Image      string  `json:"image"`
	Medium     string  `json:"medium"`
	Dimensions string  `json:"dimensions"`
}

// Manager performs cart operations against a session and the catalog.
type Manager struct {
	db *gorm.DB
}

// NewManager constructs a Manager.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Load decodes the cart from the session. A missing or corrupt value yields
// an empty cart.
func Load(sess Session) Contents {
	raw, ok := sess.Get(KeyCart).(string)
	if !ok || raw == "" {
		return Contents{}
	}

	var contents Contents
	if err := json.Unmarshal([]byte(raw), &contents); err != nil {
		return Contents{}
	}
	return contents
}

// Save encodes the cart back into the session.
func Save(sess Session, contents Contents) {
	encoded, err := json.Marshal(contents)
	if err != nil {
		return
	}
	sess.Set(KeyCart, string(encoded))
}

// Add puts the artwork in the cart, or records a quick-purchase reference.
// Adding an artwork that is already present is a no-op; the returned flag
// reports whether the item was already there.
func (m *Manager) Add(sess Session, artworkID string, mode AddMode, authenticated bool) (alreadyInCart bool, artwork *models.Artwork, err error) {
	artwork, err = m.fetchActive(artworkID)
	if err != nil {
		return false, nil, err
	}
	if artwork.Sold {
		return false, artwork, ErrArtworkUnavailable
	}

	if mode == ModeQuickPurchase {
		sess.Set(KeyQuickPurchase, artworkID)
		if !authenticated {
			snapshot := GuestItem{
				ID:         artworkID,
				Title:      artwork.Title,
				Artist:     artwork.Artist.FullName(),
				Price:      artwork.CurrentPrice(),
				Image:      artwork.PrimaryImage(),
				Medium:     artwork.Medium,
				Dimensions: artwork.Dimensions,
			}
			if encoded, err := json.Marshal(snapshot); err == nil {
				sess.Set(KeyGuestItem, string(encoded))
			}
		}
		return false, artwork, nil
	}

	contents := Load(sess)
	if _, ok := contents[artworkID]; ok {
		return true, artwork, nil
	}

	contents[artworkID] = Item{
		Quantity: 1,
		AddedAt:  time.Now(),
		Title:    artwork.Title,
		Artist:   artwork.Artist.FullName(),
		Price:    artwork.CurrentPrice(),
		Image:    artwork.PrimaryImage(),
	}
	Save(sess, contents)
	return false, artwork, nil
}

// View returns the live cart lines and subtotal. Entries whose artwork has
// meanwhile been sold, deactivated or deleted are purged as a side effect,
// so viewing reconciles the cart with the catalog. The subtotal sums live
// prices, not add-time snapshots.
func (m *Manager) View(sess Session) ([]ViewItem, float64, error) {
	contents := Load(sess)

	items := make([]ViewItem, 0, len(contents))
	var subtotal float64
	dirty := false

	for artworkID, line := range contents {
		artwork, err := m.fetchActive(artworkID)
		if err != nil {
			if errors.Is(err, ErrArtworkNotFound) {
				delete(contents, artworkID)
				dirty = true
				continue
			}
			return nil, 0, err
		}
		if artwork.Sold {
			delete(contents, artworkID)
			dirty = true
			continue
		}

		itemTotal := artwork.CurrentPrice()
		subtotal += itemTotal
		items = append(items, ViewItem{
			Artwork:   artwork,
			Quantity:  line.Quantity,
			ItemTotal: itemTotal,
		})
	}

	if dirty {
		Save(sess, contents)
	}
	return items, subtotal, nil
}

// UpdateQuantity sets the quantity of a line item, clamped to one.
func (m *Manager) UpdateQuantity(sess Session, artworkID string, quantity int) bool {
	contents := Load(sess)
	line, ok := contents[artworkID]
	if !ok {
		return false
	}

	if quantity > 1 {
		quantity = 1
	}
	if quantity < 0 {
		quantity = 0
	}
	line.Quantity = quantity
	contents[artworkID] = line
	Save(sess, contents)
	return true
}

// Remove deletes a line item. Removing an absent item is not an error.
func (m *Manager) Remove(sess Session, artworkID string) {
	contents := Load(sess)
	if _, ok := contents[artworkID]; ok {
		delete(contents, artworkID)
		Save(sess, contents)
	}
}

// Count returns the number of line items.
func (m *Manager) Count(sess Session) int {
	return len(Load(sess))
}

// Totals applies the fixed shipping fee and tax rate to a subtotal. The same
// formula is used by the cart view, the checkout review and settlement.
func Totals(subtotal float64) (shipping, tax, total float64) {
	shipping = ShippingFee
	tax = subtotal * TaxRate
	total = subtotal + shipping + tax
	return shipping, tax, total
}

// QuickPurchaseID returns the pending quick-purchase artwork id, if any.
func QuickPurchaseID(sess Session) string {
	id, _ := sess.Get(KeyQuickPurchase).(string)
	return id
}

// GuestCheckoutItem returns the guest quick-purchase snapshot, if any.
func GuestCheckoutItem(sess Session) (*GuestItem, bool) {
	raw, ok := sess.Get(KeyGuestItem).(string)
	if !ok || raw == "" {
		return nil, false
	}

	var item GuestItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, false
	}
	return &item, true
}

// ClearPurchaseIntent removes quick-purchase state, e.g. when the shopper
// goes through the regular cart checkout instead.
func ClearPurchaseIntent(sess Session) {
	sess.Delete(KeyQuickPurchase)
	sess.Delete(KeyGuestItem)
}

func (m *Manager) fetchActive(artworkID string) (*models.Artwork, error) {
	id, err := uuid.Parse(artworkID)
	if err != nil {
		return nil, ErrArtworkNotFound
	}

	var artwork models.Artwork
	err = m.db.Preload("Artist").First(&artwork, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtworkNotFound
		}
		return nil, err
	}
	return &artwork, nil
}
