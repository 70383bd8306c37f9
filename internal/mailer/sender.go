package mailer

import (
	"context"
	"errors"
)

// DefaultFrom is used when no sender address is configured.
const DefaultFrom = "GYLounge <onboarding@resend.dev>"

var ErrNoRecipients = errors.New("no recipients")

// Message is one outgoing email. HTML and Text carry the same content.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
