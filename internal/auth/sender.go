package auth

import (
	"context"

	"github.com/saigonmart/backend/pkg/logger"
)

// Sender delivers OTP codes to a phone. Production wires an SMS gateway;
// development logs the code instead.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the application log. Dev only.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a Sender that logs instead of sending.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) SendCode(ctx context.Context, phone, code string) error {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"phone": phone, "code": code})
		s.logg.Info(ctx, "otp code issued")
	}
	return nil
}
