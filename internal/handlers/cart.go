package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/cart"
	"github.com/example/campsbay/internal/middleware"
)

// CartHandler exposes the session cart over HTTP.
type CartHandler struct {
	cart     *cart.Manager
	sessions *session.Store
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB, sessions *session.Store) *CartHandler {
	return &CartHandler{cart: cart.NewManager(db), sessions: sessions}
}

type addToCartRequest struct {
	ArtworkID string `json:"artwork_id"`
	// Mode is "normal" (default) or "quick_purchase".
	Mode string `json:"mode"`
}

// AddToCart puts an artwork in the cart, or records a quick-purchase intent
// when mode is quick_purchase. Adding a piece already in the cart is a no-op.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ArtworkID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "artwork_id is required")
	}

	mode := cart.ModeNormal
	if req.Mode == "quick_purchase" {
		mode = cart.ModeQuickPurchase
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	_, authenticated := middleware.GetCurrentUserID(c)
	already, artwork, err := h.cart.Add(sess, req.ArtworkID, mode, authenticated)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrArtworkNotFound):
			return fiber.NewError(fiber.StatusNotFound, "artwork not found")
		case errors.Is(err, cart.ErrArtworkUnavailable):
			return fiber.NewError(fiber.StatusConflict, "this artwork has already been sold")
		}
		return err
	}

	if err := sess.Save(); err != nil {
		return err
	}

	message := "Added to cart."
	if already {
		message = "This artwork is already in your cart."
	}
	if mode == cart.ModeQuickPurchase {
		message = "Proceed to checkout."
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data": fiber.Map{
			"artwork_id": artwork.ID,
			"cart_count": h.cart.Count(sess),
		},
	})
}

// ViewCart returns the live cart lines and totals. Sold or vanished pieces
// are purged as part of the read.
func (h *CartHandler) ViewCart(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	items, subtotal, err := h.cart.View(sess)
	if err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}

	lines := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		lines = append(lines, fiber.Map{
			"artwork":    newArtworkView(item.Artwork),
			"quantity":   item.Quantity,
			"item_total": item.ItemTotal,
		})
	}

	shipping, tax, total := cart.Totals(subtotal)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":    lines,
			"subtotal": subtotal,
			"shipping": shipping,
			"tax":      tax,
			"total":    total,
		},
	})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets a line's quantity, clamped to one per artwork.
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	if !h.cart.UpdateQuantity(sess, c.Params("id"), req.Quantity) {
		return fiber.NewError(fiber.StatusNotFound, "item not in cart")
	}
	if err := sess.Save(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cart updated.",
	})
}

// RemoveFromCart deletes a line. Removing an absent line still succeeds.
func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	h.cart.Remove(sess, c.Params("id"))
	if err := sess.Save(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Removed from cart.",
		"data": fiber.Map{
			"cart_count": h.cart.Count(sess),
		},
	})
}
