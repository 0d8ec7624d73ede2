// Package otp issues and validates single-use six-digit codes bound to a
// user and a purpose (email verification or password reset).
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/models"
)

// TTL is the validity window of an issued code.
const TTL = 15 * time.Minute

// CodeLength is the fixed number of digits in a code.
const CodeLength = 6

var (
	// ErrOTPNotFound means no unused code matches the submitted value.
	// Already-consumed codes report this too: they are excluded from the
	// matching set.
	ErrOTPNotFound = errors.New("otp: code not found")
	// ErrOTPExpired means a matching unused code exists but is past expiry.
	ErrOTPExpired = errors.New("otp: code expired")
)

// Service issues, validates and consumes codes against the database.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Issue deletes all unused outstanding codes for (user, purpose), persists a
// fresh code expiring in 15 minutes and returns it for delivery.
func (s *Service) Issue(userID uuid.UUID, purpose string) (string, error) {
	if err := s.db.
		Where("user_id = ? AND purpose = ? AND is_used = ?", userID, purpose, false).
		Delete(&models.OTP{}).Error; err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	record := models.OTP{
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(TTL),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}

	return code, nil
}

// Validate looks up an unused code for (user, purpose) matching the submitted
// value exactly. It has no side effects; the caller must Consume the returned
// record once every other success condition holds.
func (s *Service) Validate(userID uuid.UUID, purpose, code string) (*models.OTP, error) {
	var record models.OTP
	err := s.db.
		Where("user_id = ? AND purpose = ? AND code = ? AND is_used = ?", userID, purpose, code, false).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}

	if !record.IsValid(s.now()) {
		// Expired codes stay in place; the next Issue sweeps them.
		return nil, ErrOTPExpired
	}

	return &record, nil
}

// Consume marks the code used. Calling it again for an already-used code is
// a no-op.
func (s *Service) Consume(record *models.OTP) error {
	if record.IsUsed {
		return nil
	}

	now := s.now()
	record.IsUsed = true
	record.UsedAt = &now

	return s.db.Model(&models.OTP{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{"is_used": true, "used_at": now}).Error
}

func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
