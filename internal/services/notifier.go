package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"

	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/mailer"
)

// ErrNoOperatorRecipients is reported by SendBookingNotification when no
// staff addresses are configured.
var ErrNoOperatorRecipients = errors.New("BOOKING_NOTIFICATION_EMAILS is not set")

// SendResult is the outcome of one email. Error is set only when OK is false.
// Only OK is serialized; provider ids and error text stay in the logs.
type SendResult struct {
	OK    bool   `json:"ok"`
	ID    string `json:"-"`
	Error string `json:"-"`
}

// BookingDetails is what the two booking emails show.
type BookingDetails struct {
	MemberName   string
	MemberEmail  string
	MemberPhone  string
	EventTitle   string
	EventDate    string
	TimeLabel    string
	LocationName string
}

// MembershipInstructions is the content of the bank transfer email.
type MembershipInstructions struct {
	Name      string
	Email     string
	Reference string
	Bank      *BankTransferDetails
}

type emailTemplate struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func newEmailTemplate(subject, html, text string) emailTemplate {
	return emailTemplate{
		subject: subject,
		html:    htmltemplate.Must(htmltemplate.New(subject).Parse(html)),
		text:    texttemplate.Must(texttemplate.New(subject).Parse(text)),
	}
}

func (t emailTemplate) render(data any) (mailer.Message, error) {
	var html, text bytes.Buffer
	if err := t.html.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render text: %w", err)
	}
	return mailer.Message{
		Subject: t.subject,
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()),
	}, nil
}

var (
	confirmationEmail = newEmailTemplate("Booking Confirmation", `
<h1>Booking Confirmation</h1>
<p>Hi {{.MemberName}},</p>
<p>Thanks for your booking. We look forward to welcoming you to GYLounge.</p>
<ul>
  <li><strong>Event:</strong> {{.EventTitle}}</li>
  <li><strong>Date:</strong> {{.EventDate}}</li>
  <li><strong>Time:</strong> {{.TimeLabel}}</li>
  <li><strong>Location:</strong> {{.LocationName}}</li>
</ul>
`, `
Booking Confirmation
Hi {{.MemberName}},
Thanks for your booking. We look forward to welcoming you to GYLounge.
Event: {{.EventTitle}}
Date: {{.EventDate}}
Time: {{.TimeLabel}}
Location: {{.LocationName}}
`)

	notificationEmail = newEmailTemplate("New Booking Received", `
<h1>New Booking</h1>
<ul>
  <li><strong>Member:</strong> {{.MemberName}}</li>
  <li><strong>Email:</strong> {{.MemberEmail}}</li>
  <li><strong>Phone:</strong> {{if .MemberPhone}}{{.MemberPhone}}{{else}}Not provided{{end}}</li>
  <li><strong>Event:</strong> {{.EventTitle}}</li>
  <li><strong>Date:</strong> {{.EventDate}}</li>
  <li><strong>Time:</strong> {{.TimeLabel}}</li>
  <li><strong>Location:</strong> {{.LocationName}}</li>
</ul>
`, `
New Booking Received
Member: {{.MemberName}}
Email: {{.MemberEmail}}
Phone: {{if .MemberPhone}}{{.MemberPhone}}{{else}}Not provided{{end}}
Event: {{.EventTitle}}
Date: {{.EventDate}}
Time: {{.TimeLabel}}
Location: {{.LocationName}}
`)

	welcomeEmail = newEmailTemplate("Welcome to GYLounge", `
<h1>Welcome to GYLounge</h1>
<p>Hi {{.Name}},</p>
<p>Your membership is active. You can start booking experiences right away.</p>
`, `
Welcome to GYLounge
Hi {{.Name}},
Your membership is active. You can start booking experiences right away.
`)

	instructionsEmail = newEmailTemplate("Complete your GYLounge membership", `
<h1>Complete your GYLounge membership</h1>
<p>Hi {{.Name}},</p>
<p>Your registration is saved. Pay the membership fee by bank transfer using the details below.</p>
<ul>
  <li><strong>Membership fee:</strong> GHS {{.Bank.FeeLabel}}</li>
  <li><strong>Bank:</strong> {{.Bank.BankName}}</li>
  <li><strong>Account name:</strong> {{.Bank.AccountName}}</li>
  <li><strong>Account number:</strong> {{.Bank.AccountNumber}}</li>
  <li><strong>Reference:</strong> {{.Reference}}</li>
</ul>
{{.InstructionsHTML}}
<p>Your membership becomes active once the transfer is confirmed.</p>
`, `
Complete your GYLounge membership
Hi {{.Name}},
Your registration is saved. Pay the membership fee by bank transfer using the details below.
Membership fee: GHS {{.Bank.FeeLabel}}
Bank: {{.Bank.BankName}}
Account name: {{.Bank.AccountName}}
Account number: {{.Bank.AccountNumber}}
Reference: {{.Reference}}

{{.Bank.Instructions}}

Your membership becomes active once the transfer is confirmed.
`)
)

// Notifier sends the transactional emails. None of its methods return an
// error or panic; failures are reported in the SendResult.
type Notifier struct {
	sender             mailer.Sender
	operatorRecipients []string
	logger             *slog.Logger
}

func NewNotifier(sender mailer.Sender, operatorRecipients []string, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:             sender,
		operatorRecipients: operatorRecipients,
		logger:             logger,
	}
}

func (n *Notifier) SendBookingConfirmation(ctx context.Context, d BookingDetails) SendResult {
	return n.deliver(ctx, confirmationEmail, []string{d.MemberEmail}, n.replyTo(), d)
}

func (n *Notifier) SendBookingNotification(ctx context.Context, d BookingDetails) SendResult {
	if len(n.operatorRecipients) == 0 {
		return SendResult{Error: ErrNoOperatorRecipients.Error()}
	}
	return n.deliver(ctx, notificationEmail, n.operatorRecipients, "", d)
}

func (n *Notifier) SendWelcomeEmail(ctx context.Context, to, name string) SendResult {
	return n.deliver(ctx, welcomeEmail, []string{to}, n.replyTo(), struct{ Name string }{name})
}

func (n *Notifier) SendMembershipInstructions(ctx context.Context, in MembershipInstructions) SendResult {
	if in.Bank == nil {
		return SendResult{Error: ErrBankDetailsMissing.Error()}
	}
	data := struct {
		MembershipInstructions
		InstructionsHTML htmltemplate.HTML
	}{
		MembershipInstructions: in,
		InstructionsHTML:       htmltemplate.HTML(helpers.RenderMarkdown(in.Bank.Instructions)),
	}
	return n.deliver(ctx, instructionsEmail, []string{in.Email}, n.replyTo(), data)
}

// replyTo sends member replies to the first operator inbox, if any.
func (n *Notifier) replyTo() string {
	if len(n.operatorRecipients) == 0 {
		return ""
	}
	return n.operatorRecipients[0]
}

func (n *Notifier) deliver(ctx context.Context, tmpl emailTemplate, to []string, replyTo string, data any) (res SendResult) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("email send panicked", "subject", tmpl.subject, "panic", r)
			res = SendResult{Error: fmt.Sprintf("email send panicked: %v", r)}
		}
	}()

	msg, err := tmpl.render(data)
	if err != nil {
		n.logger.Error("failed to render email", "subject", tmpl.subject, "error", err)
		return SendResult{Error: err.Error()}
	}
	msg.To = to
	msg.ReplyTo = replyTo

	id, err := n.sender.Send(ctx, msg)
	if err != nil {
		n.logger.Warn("email send failed", "subject", tmpl.subject, "error", err)
		return SendResult{Error: err.Error()}
	}
	if id == "" {
		id = "unknown"
	}
	return SendResult{OK: true, ID: id}
}
