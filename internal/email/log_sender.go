package email

import (
	"context"

	"github.com/utpal16raj09/flfe/internal/logger"
)

// LogSender writes mail to the log instead of sending it.
// Default for local development.
type LogSender struct {
	product string
}

func NewLogSender(product string) *LogSender {
	return &LogSender{product: product}
}

func (s *LogSender) SendWelcome(ctx context.Context, to, name string) error {
	logger.Info("welcome email (log driver)", map[string]any{
		"to":      to,
		"subject": welcomeSubject(s.product),
		"body":    welcomeBody(s.product, name),
	})
	return nil
}
