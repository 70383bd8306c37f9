package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopSender(t *testing.T) {
	s := NewNoopSender(nil)

	_, err := s.Send(context.Background(), Message{Subject: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	id, err := s.Send(context.Background(), Message{To: []string{"ama@example.com"}, Subject: "hi", Text: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	sent := s.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi", sent[0].Subject)
}

func TestResendSenderRejectsEmptyRecipients(t *testing.T) {
	s := NewResendSender("re_test", "", nil)
	_, err := s.Send(context.Background(), Message{Subject: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}
