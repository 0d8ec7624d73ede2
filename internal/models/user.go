package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
)

// User represents a gallery account. Email is the identity key.
type User struct {
	BaseModel
	Email           string `gorm:"uniqueIndex" json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PasswordHash    string `json:"-"`
	Role            string `gorm:"default:customer" json:"role"`
	IsEmailVerified bool   `json:"is_email_verified"`

	Profile *UserProfile `json:"profile,omitempty"`
	Orders  []Order      `json:"orders,omitempty"`
}

// IsOwner reports whether the account may use admin endpoints.
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// OTP purposes.
const (
	OTPPurposeEmailVerification = "email_verification"
	OTPPurposePasswordReset     = "password_reset"
)

// OTP is a single-use six-digit code bound to a user and a purpose.
type OTP struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index:idx_otp_lookup" json:"user_id"`
	User      *User      `json:"-"`
	Code      string     `gorm:"size:6" json:"-"`
	Purpose   string     `gorm:"size:20;index:idx_otp_lookup" json:"purpose"`
	ExpiresAt time.Time  `json:"expires_at"`
	IsUsed    bool       `gorm:"index:idx_otp_lookup" json:"is_used"`
	UsedAt    *time.Time `json:"used_at"`
}

// IsValid reports whether the code can still be redeemed.
func (o *OTP) IsValid(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}

// UserProfile holds optional account details, created lazily on first
// profile access.
type UserProfile struct {
	BaseModel
	UserID                 uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Bio                    string    `json:"bio"`
	Address                string    `json:"address"`
	City                   string    `json:"city"`
	Country                string    `json:"country"`
	NewsletterSubscription bool      `gorm:"default:true" json:"newsletter_subscription"`
}
