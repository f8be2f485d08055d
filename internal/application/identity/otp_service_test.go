package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/infrastructure/cache"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

type capturingSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (s *capturingSender) SendOTP(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.codes == nil {
		s.codes = make(map[string]string)
	}
	s.codes[phone] = code
	return nil
}

func (s *capturingSender) last(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

func newOTPService(f *identityFixture, sender identity.SMSSender, cfg config.OTPConfig) *OTPService {
	return NewOTPService(
		f.users, f.apps,
		cache.NewMemoryOTPStore(), cache.NewMemoryThrottle(),
		sender, f.jwt, cfg, nil, zap.NewNop(),
	)
}

func TestOTPService_RequestAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newIdentityFixture()
	sender := &capturingSender{}
	svc := newOTPService(f, sender, config.OTPConfig{TTL: 5 * time.Minute, Length: 6})

	user := newTestUser(t, "otp@example.com", "secret123")
	require.NoError(t, user.SetPhoneNumber("9876543210"))
	f.users.On("FindByPhone", ctx, "9876543210").Return(user, nil)
	f.apps.On("FindByUserID", ctx, user.ID).Return(nil, identity.ErrApplicationNotFound)

	result, err := svc.Request(ctx, "98765 43210")
	require.NoError(t, err)
	assert.Equal(t, 300, result.ExpiresInSeconds)

	code := sender.last("9876543210")
	require.Len(t, code, 6)

	auth, err := svc.Verify(ctx, "9876543210", code)
	require.NoError(t, err)
	assert.Equal(t, user.ID, auth.User.ID)
	assert.NotEmpty(t, auth.Token.AccessToken)

	_, err = svc.Verify(ctx, "9876543210", code)
	assert.ErrorIs(t, err, identity.ErrInvalidOTP, "a code is single-use")
}

func TestOTPService_RequestReplacesPendingCode(t *testing.T) {
	ctx := context.Background()
	f := newIdentityFixture()
	sender := &capturingSender{}
	store := cache.NewMemoryOTPStore()
	svc := NewOTPService(f.users, f.apps, store, cache.NewMemoryThrottle(), sender, f.jwt,
		config.OTPConfig{TTL: time.Minute, Length: 6}, nil, zap.NewNop())

	_, err := svc.Request(ctx, "9876543210")
	require.NoError(t, err)
	_, err = svc.Request(ctx, "9876543210")
	require.NoError(t, err)

	stored, err := store.Consume(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, sender.last("9876543210"), stored)
}

func TestOTPService_WrongCodeSpendsPendingCode(t *testing.T) {
	ctx := context.Background()
	f := newIdentityFixture()
	sender := &capturingSender{}
	svc := newOTPService(f, sender, config.OTPConfig{TTL: time.Minute, Length: 6})

	_, err := svc.Request(ctx, "9876543210")
	require.NoError(t, err)
	code := sender.last("9876543210")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = svc.Verify(ctx, "9876543210", wrong)
	assert.ErrorIs(t, err, identity.ErrInvalidOTP)

	_, err = svc.Verify(ctx, "9876543210", code)
	assert.ErrorIs(t, err, identity.ErrInvalidOTP)
	f.users.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestOTPService_Throttle(t *testing.T) {
	ctx := context.Background()
	f := newIdentityFixture()
	svc := newOTPService(f, &capturingSender{}, config.OTPConfig{
		TTL:            time.Minute,
		Length:         6,
		ResendInterval: time.Minute,
	})

	_, err := svc.Request(ctx, "9876543210")
	require.NoError(t, err)

	_, err = svc.Request(ctx, "9876543210")
	assert.ErrorIs(t, err, identity.ErrOTPThrottled)

	_, err = svc.Request(ctx, "9123456789")
	assert.NoError(t, err, "the window is per phone number")
}

func TestOTPService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid phone", func(t *testing.T) {
		f := newIdentityFixture()
		svc := newOTPService(f, &capturingSender{}, config.OTPConfig{TTL: time.Minute})

		_, err := svc.Request(ctx, "12ab")
		assert.ErrorIs(t, err, errInvalidPhone)
	})

	t.Run("no user owns the phone", func(t *testing.T) {
		f := newIdentityFixture()
		sender := &capturingSender{}
		svc := newOTPService(f, sender, config.OTPConfig{TTL: time.Minute})
		f.users.On("FindByPhone", ctx, "9876543210").Return(nil, identity.ErrUserNotFound)

		_, err := svc.Request(ctx, "9876543210")
		require.NoError(t, err)
		_, err = svc.Verify(ctx, "9876543210", sender.last("9876543210"))
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("delivery failure", func(t *testing.T) {
		f := newIdentityFixture()
		svc := newOTPService(f, &capturingSender{err: errors.New("gateway down")}, config.OTPConfig{TTL: time.Minute})

		_, err := svc.Request(ctx, "9876543210")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Failed to send OTP")
	})

	t.Run("verify without request", func(t *testing.T) {
		f := newIdentityFixture()
		svc := newOTPService(f, &capturingSender{}, config.OTPConfig{TTL: time.Minute})

		_, err := svc.Verify(ctx, "9876543210", "123456")
		assert.ErrorIs(t, err, identity.ErrInvalidOTP)
	})
}
