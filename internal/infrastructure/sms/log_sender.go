// Package sms delivers one-time codes.
package sms

import (
	"context"

	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/identity"
)

var _ identity.SMSSender = (*LogSender)(nil)

// LogSender writes OTP messages to the log instead of a provider.
// The code itself is only logged at debug level.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// SendOTP logs the message for phone
func (s *LogSender) SendOTP(_ context.Context, phone, code string) error {
	s.logger.Info("OTP message queued", zap.String("phone", maskPhone(phone)))
	s.logger.Debug("OTP message body", zap.String("phone", phone), zap.String("code", code))
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range phone {
		if i < len(phone)-4 {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
