package mailer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netolib/library-service/internal/mailer"
)

func Test_SMTPSender_RejectsEmptyRecipientList(t *testing.T) {
	// arrange
	sender, err := mailer.NewSMTPSender(mailer.Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "library@example.com",
	})
	require.NoError(t, err)

	// act
	err = sender.Send(context.Background(), "subject", "body", nil)

	// assert
	assert.ErrorIs(t, err, mailer.ErrNoRecipients)
}

func Test_Recorder_RecordsDeliveries(t *testing.T) {
	// arrange
	recorder := mailer.NewRecorder()

	// act
	err := recorder.Send(context.Background(), "subject", "body", []string{"a@example.com", "b@example.com"})

	// assert
	require.NoError(t, err)
	sent := recorder.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "subject", sent[0].Subject)
	assert.Equal(t, "body", sent[0].Body)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sent[0].To)
}

func Test_Recorder_IsolatesReturnedSlices(t *testing.T) {
	// arrange
	recorder := mailer.NewRecorder()
	to := []string{"a@example.com"}

	require.NoError(t, recorder.Send(context.Background(), "s", "b", to))

	// act: mutating the caller's slice must not change the record
	to[0] = "mutated@example.com"

	// assert
	assert.Equal(t, "a@example.com", recorder.Sent()[0].To[0])
}
