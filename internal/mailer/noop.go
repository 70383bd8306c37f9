package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. It is used when no
// Resend API key is configured. Sent messages are kept for inspection.
type NoopSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("noop email send", "to", msg.To, "subject", msg.Subject)
	}
	return fmt.Sprintf("noop-%d", time.Now().UnixNano()), nil
}

// Sent returns a copy of every message passed to Send.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
