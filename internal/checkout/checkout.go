// Package checkout converts a cart or quick-purchase intent into a settled
// order, flipping the purchased artworks to sold exactly once.
package checkout

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/cart"
	"github.com/example/campsbay/internal/mailer"
	"github.com/example/campsbay/internal/models"
)

// KeyLastOrder is the session key holding the reference of the most recent
// order, for one-time retrieval by the confirmation view.
const KeyLastOrder = "last_order"

var (
	// ErrEmptyCart means there is nothing to check out.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrNoSellableItems means every reviewed item had already been sold
	// by the time of settlement; nothing was mutated.
	ErrNoSellableItems = errors.New("checkout: no items available to settle")
	// ErrOrderNotFound means the confirmation reference does not match the
	// session's last order.
	ErrOrderNotFound = errors.New("checkout: order not found")
)

// DraftItem is one reviewed line ready for settlement.
type DraftItem struct {
	ArtworkID  uuid.UUID
	Title      string
	ArtistName string
	Price      float64
	Image      string
	Medium     string
	Dimensions string
	Quantity   int
}

// Draft is the reviewed snapshot shown on the checkout page.
type Draft struct {
	Items           []DraftItem
	Subtotal        float64
	Shipping        float64
	Tax             float64
	Total           float64
	IsQuickPurchase bool
	Warnings        []string
}

// BuyerDetails are the required contact and shipping fields.
type BuyerDetails struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	PaymentMethod string `json:"payment_method"`
}

// Validate requires every contact and shipping field to be non-blank. A
// missing field rejects the whole submission; there are no partial orders.
func (d *BuyerDetails) Validate() error {
	errs := models.FieldErrors{}
	required := map[string]string{
		"first_name":  d.FirstName,
		"last_name":   d.LastName,
		"email":       d.Email,
		"phone":       d.Phone,
		"address":     d.Address,
		"city":        d.City,
		"province":    d.Province,
		"postal_code": d.PostalCode,
		"country":     d.Country,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs.Add(field, "This field is required.")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Result reports the outcome of a settlement.
type Result struct {
	Order    *models.Order
	Warnings []string
}

// Engine runs the review and settlement state machine.
type Engine struct {
	db           *gorm.DB
	mailer       mailer.Mailer
	newReference func() string
}

// NewEngine constructs an Engine.
func NewEngine(db *gorm.DB, m mailer.Mailer) *Engine {
	return &Engine{db: db, mailer: m, newReference: generateReference}
}

// Review assembles the checkout snapshot from the quick-purchase reference,
// the guest snapshot, or the cart. Sold or vanished items are purged with a
// warning. An empty result returns ErrEmptyCart.
func (e *Engine) Review(sess cart.Session) (*Draft, error) {
	quickID := cart.QuickPurchaseID(sess)
	guestItem, hasGuestItem := cart.GuestCheckoutItem(sess)

	draft := &Draft{IsQuickPurchase: quickID != "" || hasGuestItem}

	if quickID != "" {
		item, err := e.liveDraftItem(quickID)
		if err != nil {
			cart.ClearPurchaseIntent(sess)
			return nil, err
		}
		draft.Items = append(draft.Items, *item)
		draft.Subtotal = item.Price
	} else if hasGuestItem {
		id, err := uuid.Parse(guestItem.ID)
		if err != nil {
			cart.ClearPurchaseIntent(sess)
			return nil, cart.ErrArtworkNotFound
		}
		draft.Items = append(draft.Items, DraftItem{
			ArtworkID:  id,
			Title:      guestItem.Title,
			ArtistName: guestItem.Artist,
			Price:      guestItem.Price,
			Image:      guestItem.Image,
			Medium:     guestItem.Medium,
			Dimensions: guestItem.Dimensions,
			Quantity:   1,
		})
		draft.Subtotal = guestItem.Price
	} else {
		contents := cart.Load(sess)
		if len(contents) == 0 {
			return nil, ErrEmptyCart
		}

		dirty := false
		for artworkID, line := range contents {
			item, err := e.liveDraftItem(artworkID)
			if err != nil {
				if errors.Is(err, cart.ErrArtworkNotFound) || errors.Is(err, cart.ErrArtworkUnavailable) {
					delete(contents, artworkID)
					dirty = true
					if errors.Is(err, cart.ErrArtworkUnavailable) {
						draft.Warnings = append(draft.Warnings,
							fmt.Sprintf("%q has been sold and was removed from your cart.", line.Title))
					}
					continue
				}
				return nil, err
			}
			item.Quantity = line.Quantity
			draft.Items = append(draft.Items, *item)
			draft.Subtotal += item.Price
		}
		if dirty {
			cart.Save(sess, contents)
		}
	}

	if len(draft.Items) == 0 {
		return nil, ErrEmptyCart
	}

	draft.Shipping, draft.Tax, draft.Total = cart.Totals(draft.Subtotal)
	return draft, nil
}

// Submit settles the reviewed items: buyer details are validated, then each
// artwork's sold flag is flipped with an atomic conditional update so that
// two concurrent settlements cannot both claim the same piece. Items claimed
// by a concurrent order are skipped with a warning and the order settles for
// the rest. The confirmation email is attempted last; its failure downgrades
// the outcome to a warning, never a rollback.
func (e *Engine) Submit(sess cart.Session, details BuyerDetails, userID *uuid.UUID) (*Result, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	draft, err := e.Review(sess)
	if err != nil {
		return nil, err
	}

	return e.settle(sess, draft, details, userID)
}

// settle runs the settlement transaction for an already reviewed draft.
func (e *Engine) settle(sess cart.Session, draft *Draft, details BuyerDetails, userID *uuid.UUID) (*Result, error) {
	order := &models.Order{
		UserID:        userID,
		FirstName:     details.FirstName,
		LastName:      details.LastName,
		Email:         details.Email,
		Phone:         details.Phone,
		Address:       details.Address,
		City:          details.City,
		Province:      details.Province,
		PostalCode:    details.PostalCode,
		Country:       details.Country,
		PaymentMethod: details.PaymentMethod,
		PlacedAt:      time.Now(),
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "card"
	}

	warnings := append([]string(nil), draft.Warnings...)

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		for _, item := range draft.Items {
			// Conditional flip: only the transaction that observes
			// sold=false claims the piece.
			res := tx.Model(&models.Artwork{}).
				Where("id = ? AND sold = ?", item.ArtworkID, false).
				UpdateColumn("sold", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				order.Partial = true
				warnings = append(warnings,
					fmt.Sprintf("%q has already been sold and was excluded from your order.", item.Title))
				continue
			}

			order.Items = append(order.Items, models.OrderItem{
				ArtworkID:  item.ArtworkID,
				Title:      item.Title,
				ArtistName: item.ArtistName,
				Image:      item.Image,
				Medium:     item.Medium,
				Dimensions: item.Dimensions,
				Quantity:   item.Quantity,
				UnitPrice:  item.Price,
				LineTotal:  item.Price,
			})
			subtotal += item.Price
		}

		if len(order.Items) == 0 {
			return ErrNoSellableItems
		}

		order.Subtotal = subtotal
		order.Shipping, order.Tax, order.Total = cart.Totals(subtotal)

		return e.createWithReference(tx, order)
	})
	if err != nil {
		return nil, err
	}

	// Settlement committed: clear purchase state and stage the one-time
	// confirmation reference.
	cart.Save(sess, cart.Contents{})
	cart.ClearPurchaseIntent(sess)
	sess.Set(KeyLastOrder, order.Reference)

	if err := e.sendConfirmation(order); err != nil {
		warnings = append(warnings,
			"Order placed successfully, but there was an issue sending the confirmation email.")
	}

	return &Result{Order: order, Warnings: warnings}, nil
}

// Confirmation returns the order for the reference staged in the session and
// consumes the staging key, so the confirmation is retrievable once.
func (e *Engine) Confirmation(sess cart.Session, reference string) (*models.Order, error) {
	staged, _ := sess.Get(KeyLastOrder).(string)
	if staged == "" || staged != reference {
		return nil, ErrOrderNotFound
	}

	var order models.Order
	err := e.db.Preload("Items").First(&order, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	sess.Delete(KeyLastOrder)
	return &order, nil
}

func (e *Engine) liveDraftItem(artworkID string) (*DraftItem, error) {
	id, err := uuid.Parse(artworkID)
	if err != nil {
		return nil, cart.ErrArtworkNotFound
	}

	var artwork models.Artwork
	err = e.db.Preload("Artist").First(&artwork, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrArtworkNotFound
		}
		return nil, err
	}
	if artwork.Sold {
		return nil, cart.ErrArtworkUnavailable
	}

	return &DraftItem{
		ArtworkID:  artwork.ID,
		Title:      artwork.Title,
		ArtistName: artwork.Artist.FullName(),
		Price:      artwork.CurrentPrice(),
		Image:      artwork.PrimaryImage(),
		Medium:     artwork.Medium,
		Dimensions: artwork.Dimensions,
		Quantity:   1,
	}, nil
}

func (e *Engine) sendConfirmation(order *models.Order) error {
	if order.Email == "" {
		return nil
	}

	summary := mailer.OrderSummary{
		Reference:  order.Reference,
		FirstName:  order.FirstName,
		LastName:   order.LastName,
		Subtotal:   order.Subtotal,
		Shipping:   order.Shipping,
		Tax:        order.Tax,
		Total:      order.Total,
		Address:    order.Address,
		City:       order.City,
		Province:   order.Province,
		PostalCode: order.PostalCode,
		Country:    order.Country,
	}
	for _, item := range order.Items {
		summary.Items = append(summary.Items, mailer.OrderLine{
			Title:      item.Title,
			ArtistName: item.ArtistName,
			Price:      item.UnitPrice,
			Quantity:   item.Quantity,
		})
	}

	subject, htmlBody, textBody := mailer.OrderConfirmationEmail(summary, order.PlacedAt)
	if err := e.mailer.Send(order.Email, subject, htmlBody, textBody); err != nil {
		log.Printf("[Checkout] Confirmation email for order %s failed: %v", order.Reference, err)
		return err
	}
	return nil
}

// maxReferenceAttempts bounds how often a colliding reference is regenerated.
const maxReferenceAttempts = 5

// createWithReference persists the order, regenerating the reference when the
// random same-day suffix is already taken. The unique index on reference
// remains the backstop for a true race.
func (e *Engine) createWithReference(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		order.Reference = e.newReference()

		var count int64
		if err := tx.Model(&models.Order{}).
			Where("reference = ?", order.Reference).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		return tx.Create(order).Error
	}
	return errors.New("checkout: could not allocate a unique order reference")
}

// generateReference builds a date-stamped reference with a random 4-digit
// suffix, e.g. ORD-20260901-4821.
func generateReference() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	suffix := int64(1000)
	if err == nil {
		suffix += n.Int64()
	}
	return fmt.Sprintf("ORD-%s-%d", time.Now().Format("20060102"), suffix)
}
