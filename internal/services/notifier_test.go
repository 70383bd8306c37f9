package services

import (
	"context"
	"testing"

	"github.com/joshua-takyi/gylounge/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetails() BookingDetails {
	return BookingDetails{
		MemberName:   "Ama <b>Mensah</b>",
		MemberEmail:  activeEmail,
		EventTitle:   "Sip & Paint",
		EventDate:    "Mar 14, 2026",
		TimeLabel:    "15:00 - 17:00",
		LocationName: "East Legon Lounge",
	}
}

func TestNotificationWithoutRecipients(t *testing.T) {
	sender := mailer.NewNoopSender(nil)
	n := NewNotifier(sender, nil, testLogger())

	res := n.SendBookingNotification(context.Background(), sampleDetails())

	assert.False(t, res.OK)
	assert.Equal(t, ErrNoOperatorRecipients.Error(), res.Error)
	assert.Empty(t, sender.Sent())
}

func TestNotificationPhoneFallback(t *testing.T) {
	sender := mailer.NewNoopSender(nil)
	n := NewNotifier(sender, []string{"a@gylounge.com", "b@gylounge.com"}, testLogger())

	res := n.SendBookingNotification(context.Background(), sampleDetails())

	require.True(t, res.OK)
	assert.NotEmpty(t, res.ID)
	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"a@gylounge.com", "b@gylounge.com"}, sent[0].To)
	assert.Contains(t, sent[0].Text, "Phone: Not provided")
	assert.Empty(t, sent[0].ReplyTo)
}

func TestMemberEmailsReplyToOperators(t *testing.T) {
	sender := mailer.NewNoopSender(nil)
	n := NewNotifier(sender, []string{"ops@gylounge.com", "host@gylounge.com"}, testLogger())

	require.True(t, n.SendBookingConfirmation(context.Background(), sampleDetails()).OK)
	require.True(t, n.SendWelcomeEmail(context.Background(), activeEmail, "Ama").OK)
	for _, msg := range sender.Sent() {
		assert.Equal(t, "ops@gylounge.com", msg.ReplyTo, msg.Subject)
	}

	sender = mailer.NewNoopSender(nil)
	require.True(t, NewNotifier(sender, nil, testLogger()).SendBookingConfirmation(context.Background(), sampleDetails()).OK)
	assert.Empty(t, sender.Sent()[0].ReplyTo)
}

func TestConfirmationEscapesHTML(t *testing.T) {
	sender := mailer.NewNoopSender(nil)
	n := NewNotifier(sender, nil, testLogger())

	res := n.SendBookingConfirmation(context.Background(), sampleDetails())

	require.True(t, res.OK)
	msg := sender.Sent()[0]
	assert.NotContains(t, msg.HTML, "<b>Mensah</b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;Mensah&lt;/b&gt;")
	assert.Contains(t, msg.Text, "Hi Ama <b>Mensah</b>,")
}

func TestDeliverTransportError(t *testing.T) {
	n := NewNotifier(failingSender(), nil, testLogger())

	res := n.SendBookingConfirmation(context.Background(), sampleDetails())
	assert.False(t, res.OK)
	assert.Equal(t, errTransport.Error(), res.Error)
}

func TestDeliverRecoversPanic(t *testing.T) {
	sender := senderFunc(func(context.Context, mailer.Message) (string, error) {
		panic("nil client")
	})
	n := NewNotifier(sender, nil, testLogger())

	res := n.SendWelcomeEmail(context.Background(), activeEmail, "Ama")
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "panicked")
}

func TestDeliverUnknownID(t *testing.T) {
	sender := senderFunc(func(context.Context, mailer.Message) (string, error) {
		return "", nil
	})
	n := NewNotifier(sender, nil, testLogger())

	res := n.SendWelcomeEmail(context.Background(), activeEmail, "Ama")
	assert.True(t, res.OK)
	assert.Equal(t, "unknown", res.ID)
}

func TestInstructionsWithoutBank(t *testing.T) {
	n := NewNotifier(mailer.NewNoopSender(nil), nil, testLogger())
	res := n.SendMembershipInstructions(context.Background(), MembershipInstructions{Email: activeEmail})
	assert.False(t, res.OK)
	assert.Equal(t, ErrBankDetailsMissing.Error(), res.Error)
}
