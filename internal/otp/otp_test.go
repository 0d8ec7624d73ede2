package otp

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OTP{}))
	return db
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	svc := NewService(setupTestDB(t))
	userID := uuid.New()

	code, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestIssueSweepsPriorUnusedCodes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	userID := uuid.New()

	first, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	second, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, first)
	assert.ErrorIs(t, err, ErrOTPNotFound)

	record, err := svc.Validate(userID, models.OTPPurposeEmailVerification, second)
	require.NoError(t, err)
	assert.Equal(t, second, record.Code)
}

func TestIssueScopedByPurpose(t *testing.T) {
	svc := NewService(setupTestDB(t))
	userID := uuid.New()

	verify, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	_, err = svc.Issue(userID, models.OTPPurposePasswordReset)
	require.NoError(t, err)

	// A reset issue must not sweep the verification code.
	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, verify)
	assert.NoError(t, err)

	// Codes are bound to their purpose.
	_, err = svc.Validate(userID, models.OTPPurposePasswordReset, verify)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestValidateRejectsWrongCode(t *testing.T) {
	svc := NewService(setupTestDB(t))
	userID := uuid.New()

	code, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, wrong)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestValidateRejectsExpiredCode(t *testing.T) {
	svc := NewService(setupTestDB(t))
	userID := uuid.New()

	code, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(TTL + time.Second) }
	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, code)
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestValidateHasNoSideEffects(t *testing.T) {
	svc := NewService(setupTestDB(t))
	userID := uuid.New()

	code, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, code)
	require.NoError(t, err)

	// Still valid: validation alone must not consume.
	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, code)
	assert.NoError(t, err)
}

func TestConsumeIsOneWayAndIdempotent(t *testing.T) {
	svc := NewService(setupTestDB(t))
	userID := uuid.New()

	code, err := svc.Issue(userID, models.OTPPurposeEmailVerification)
	require.NoError(t, err)

	record, err := svc.Validate(userID, models.OTPPurposeEmailVerification, code)
	require.NoError(t, err)

	require.NoError(t, svc.Consume(record))
	assert.True(t, record.IsUsed)
	require.NotNil(t, record.UsedAt)

	// Consumed codes no longer validate.
	_, err = svc.Validate(userID, models.OTPPurposeEmailVerification, code)
	assert.ErrorIs(t, err, ErrOTPNotFound)

	// Second consume is a no-op.
	firstUsedAt := *record.UsedAt
	require.NoError(t, svc.Consume(record))
	assert.Equal(t, firstUsedAt, *record.UsedAt)
}
