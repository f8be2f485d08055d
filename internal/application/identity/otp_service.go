package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/infrastructure/auth"
	"github.com/sevenext/backend/internal/infrastructure/config"
	"github.com/sevenext/backend/internal/infrastructure/telemetry"
)

// OTP request outcomes recorded in metrics
const (
	otpOutcomeSent      = "sent"
	otpOutcomeThrottled = "throttled"
	otpOutcomeFailed    = "failed"
)

var errInvalidPhone = shared.NewValidationError("INVALID_PHONE", "Invalid phone number")

// OTPService signs users in with a one-time code sent to their phone
type OTPService struct {
	tokenIssuer
	userRepo identity.UserRepository
	store    identity.OTPStore
	throttle identity.Throttle
	sender   identity.SMSSender
	cfg      config.OTPConfig
	metrics  *telemetry.EngineMetrics
	logger   *zap.Logger
}

// NewOTPService creates a new OTP service
func NewOTPService(
	userRepo identity.UserRepository,
	appRepo identity.B2BApplicationRepository,
	store identity.OTPStore,
	throttle identity.Throttle,
	sender identity.SMSSender,
	jwtService *auth.JWTService,
	cfg config.OTPConfig,
	metrics *telemetry.EngineMetrics,
	logger *zap.Logger,
) *OTPService {
	if metrics == nil {
		metrics = telemetry.NoopEngineMetrics()
	}
	return &OTPService{
		tokenIssuer: tokenIssuer{appRepo: appRepo, jwtService: jwtService},
		userRepo:    userRepo,
		store:       store,
		throttle:    throttle,
		sender:      sender,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger,
	}
}

// Request generates a code for phone, replacing any pending one, and sends it
func (s *OTPService) Request(ctx context.Context, phone string) (*OTPRequestResult, error) {
	phone = identity.NormalizePhone(phone)
	if !identity.ValidPhone(phone) {
		return nil, errInvalidPhone
	}

	if s.cfg.ResendInterval > 0 {
		allowed, err := s.throttle.Allow(ctx, phone, s.cfg.ResendInterval)
		if err != nil {
			// an unavailable throttle must not block sign-in
			s.logger.Warn("OTP throttle check failed", zap.Error(err))
		} else if !allowed {
			s.metrics.RecordOTPRequest(ctx, otpOutcomeThrottled)
			return nil, identity.ErrOTPThrottled
		}
	}

	code, err := identity.GenerateOTP(s.cfg.Length)
	if err != nil {
		s.metrics.RecordOTPRequest(ctx, otpOutcomeFailed)
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	if err := s.store.Save(ctx, phone, code, s.cfg.TTL); err != nil {
		s.metrics.RecordOTPRequest(ctx, otpOutcomeFailed)
		return nil, fmt.Errorf("store otp: %w", err)
	}
	if err := s.sender.SendOTP(ctx, phone, code); err != nil {
		s.metrics.RecordOTPRequest(ctx, otpOutcomeFailed)
		s.logger.Error("Failed to send OTP", zap.Error(err))
		return nil, shared.NewUpstreamError("OTP_DELIVERY_FAILED", "Failed to send OTP")
	}

	s.metrics.RecordOTPRequest(ctx, otpOutcomeSent)
	return &OTPRequestResult{ExpiresInSeconds: int(s.cfg.TTL.Seconds())}, nil
}

// Verify consumes the pending code for phone and signs in the user owning that phone.
// The pending code is spent even when the submitted one is wrong.
func (s *OTPService) Verify(ctx context.Context, phone, code string) (*AuthResult, error) {
	phone = identity.NormalizePhone(phone)
	if !identity.ValidPhone(phone) {
		return nil, errInvalidPhone
	}

	stored, err := s.store.Consume(ctx, phone)
	if err != nil {
		if errors.Is(err, identity.ErrOTPNotFound) {
			return nil, identity.ErrInvalidOTP
		}
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		s.logger.Warn("OTP mismatch")
		return nil, identity.ErrInvalidOTP
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	audience, app, err := s.audienceFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if app != nil && !app.IsApproved() {
		return nil, notApprovedError(app)
	}

	s.logger.Info("OTP login successful", zap.String("user_id", user.ID.String()))
	return s.issue(user, audience)
}
