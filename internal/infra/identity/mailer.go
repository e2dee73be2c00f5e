package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/logger"
)

type noopMailer struct{}

func (noopMailer) SendActionLink(context.Context, string, string, string) error {
	return nil
}

// LoggingMailer records action-link dispatches for observability without
// delivering them. Deployments plug a real delivery channel behind the same
// interface.
type LoggingMailer struct {
	logger *zap.Logger
}

// NewLoggingMailer constructs a mailer backed by structured logging.
func NewLoggingMailer(log *zap.Logger) port.Mailer {
	if log == nil {
		return noopMailer{}
	}
	return &LoggingMailer{logger: log}
}

func (m *LoggingMailer) SendActionLink(_ context.Context, email, mode, link string) error {
	if m == nil || m.logger == nil {
		return nil
	}

	m.logger.Info("dispatch action link",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("mode", mode),
		zap.String("link", link),
	)

	return nil
}
