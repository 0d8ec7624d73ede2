package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a settled checkout. Orders are persisted so that confirmations
// survive session expiry.
type Order struct {
	BaseModel
	Reference     string     `gorm:"uniqueIndex" json:"reference"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User          *User      `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	Province      string     `json:"province"`
	PostalCode    string     `json:"postal_code"`
	Country       string     `json:"country"`
	PaymentMethod string     `json:"payment_method"`
	Subtotal      float64    `json:"subtotal"`
	Shipping      float64    `json:"shipping"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	Partial       bool       `json:"partial"`
	PlacedAt      time.Time  `json:"placed_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots one purchased artwork at settlement time.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ArtworkID    uuid.UUID `gorm:"type:uuid" json:"artwork_id"`
	Title        string    `json:"title"`
	ArtistName   string    `json:"artist_name"`
	Image        string    `json:"image"`
	Medium       string    `json:"medium"`
	Dimensions   string    `json:"dimensions"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	LineTotal    float64   `json:"line_total"`
}
