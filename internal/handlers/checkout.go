package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/cart"
	"github.com/example/campsbay/internal/checkout"
	"github.com/example/campsbay/internal/mailer"
	"github.com/example/campsbay/internal/middleware"
	"github.com/example/campsbay/internal/models"
)

// CheckoutHandler drives the review, settlement and confirmation endpoints,
// plus the authenticated order history.
type CheckoutHandler struct {
	db       *gorm.DB
	engine   *checkout.Engine
	sessions *session.Store
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(db *gorm.DB, m mailer.Mailer, sessions *session.Store) *CheckoutHandler {
	return &CheckoutHandler{db: db, engine: checkout.NewEngine(db, m), sessions: sessions}
}

// Checkout returns the reviewed order snapshot: the quick-purchase piece or
// the cart contents, with totals and any removed-item warnings.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	draft, err := h.engine.Review(sess)
	if saveErr := sess.Save(); saveErr != nil {
		return saveErr
	}
	if err != nil {
		return h.reviewError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    draftPayload(draft),
	})
}

// ProcessCheckout validates buyer details and settles the order. Pieces sold
// out from under the shopper are skipped with a warning; the order goes
// through with the rest.
func (h *CheckoutHandler) ProcessCheckout(c *fiber.Ctx) error {
	var details checkout.BuyerDetails
	if err := c.BodyParser(&details); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	var userID *uuid.UUID
	if id, ok := middleware.GetCurrentUserID(c); ok {
		userID = &id
	}

	result, err := h.engine.Submit(sess, details, userID)
	if saveErr := sess.Save(); saveErr != nil {
		return saveErr
	}
	if err != nil {
		var fieldErrs models.FieldErrors
		if errors.As(err, &fieldErrs) {
			return fieldErrorResponse(c, fieldErrs)
		}
		if errors.Is(err, checkout.ErrNoSellableItems) {
			return fiber.NewError(fiber.StatusConflict,
				"all items in your order have already been sold")
		}
		return h.reviewError(err)
	}

	resp := fiber.Map{
		"success":   true,
		"message":   "Order placed successfully!",
		"reference": result.Order.Reference,
		"total":     result.Order.Total,
	}
	if len(result.Warnings) > 0 {
		resp["warnings"] = result.Warnings
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// OrderConfirmation returns the order staged by the last settlement, once.
// A second request for the same reference gets a 404.
func (h *CheckoutHandler) OrderConfirmation(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	order, err := h.engine.Confirmation(sess, c.Params("reference"))
	if err != nil {
		if errors.Is(err, checkout.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orderPayload(order),
	})
}

// ListOrders returns the authenticated user's order history, newest first.
func (h *CheckoutHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var orders []models.Order
	err := h.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("placed_at DESC").
		Find(&orders).Error
	if err != nil {
		return err
	}

	payloads := make([]fiber.Map, 0, len(orders))
	for i := range orders {
		payloads = append(payloads, orderPayload(&orders[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payloads,
	})
}

// GetOrder returns one of the authenticated user's orders by reference.
func (h *CheckoutHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var order models.Order
	err := h.db.Preload("Items").
		First(&order, "reference = ? AND user_id = ?", c.Params("reference"), userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orderPayload(&order),
	})
}

func (h *CheckoutHandler) reviewError(err error) error {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return fiber.NewError(fiber.StatusBadRequest, "your cart is empty")
	case errors.Is(err, cart.ErrArtworkNotFound):
		return fiber.NewError(fiber.StatusNotFound, "artwork not found")
	case errors.Is(err, cart.ErrArtworkUnavailable):
		return fiber.NewError(fiber.StatusConflict, "this artwork has already been sold")
	}
	return err
}

func draftPayload(draft *checkout.Draft) fiber.Map {
	items := make([]fiber.Map, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, fiber.Map{
			"artwork_id":  item.ArtworkID,
			"title":       item.Title,
			"artist_name": item.ArtistName,
			"price":       item.Price,
			"image":       item.Image,
			"medium":      item.Medium,
			"dimensions":  item.Dimensions,
			"quantity":    item.Quantity,
		})
	}

	payload := fiber.Map{
		"items":             items,
		"subtotal":          draft.Subtotal,
		"shipping":          draft.Shipping,
		"tax":               draft.Tax,
		"total":             draft.Total,
		"is_quick_purchase": draft.IsQuickPurchase,
	}
	if len(draft.Warnings) > 0 {
		payload["warnings"] = draft.Warnings
	}
	return payload
}

func orderPayload(order *models.Order) fiber.Map {
	items := make([]fiber.Map, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fiber.Map{
			"artwork_id":  item.ArtworkID,
			"title":       item.Title,
			"artist_name": item.ArtistName,
			"image":       item.Image,
			"medium":      item.Medium,
			"dimensions":  item.Dimensions,
			"quantity":    item.Quantity,
			"unit_price":  item.UnitPrice,
			"line_total":  item.LineTotal,
		})
	}

	return fiber.Map{
		"reference":      order.Reference,
		"first_name":     order.FirstName,
		"last_name":      order.LastName,
		"email":          order.Email,
		"address":        order.Address,
		"city":           order.City,
		"province":       order.Province,
		"postal_code":    order.PostalCode,
		"country":        order.Country,
		"payment_method": order.PaymentMethod,
		"subtotal":       order.Subtotal,
		"shipping":       order.Shipping,
		"tax":            order.Tax,
		"total":          order.Total,
		"partial":        order.Partial,
		"placed_at":      order.PlacedAt,
		"items":          items,
	}
}
