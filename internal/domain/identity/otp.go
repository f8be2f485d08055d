package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/sevenext/backend/internal/domain/shared"
)

// ErrInvalidOTP is returned for a wrong, expired or already used code
var ErrInvalidOTP = shared.NewUnauthorizedError("INVALID_OTP", "Invalid or expired OTP")

// ErrOTPThrottled is returned when a code is requested again too soon
var ErrOTPThrottled = shared.NewRateLimitedError("OTP_THROTTLED", "Please wait before requesting another OTP")

// ErrOTPNotFound is returned by an OTPStore when no code is stored for the key
var ErrOTPNotFound = errors.New("otp not found")

// OTPStore keeps one pending code per phone number with an expiry.
// Consume is single-use: it returns the stored code and deletes it atomically.
type OTPStore interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	Consume(ctx context.Context, phone string) (string, error)
}

// Throttle admits one action per key per window
type Throttle interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// SMSSender delivers a one-time code to a phone number
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// GenerateOTP returns a numeric code of the given length
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	ten := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
