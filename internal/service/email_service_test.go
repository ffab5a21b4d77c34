package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailServiceDisabled(t *testing.T) {
	svc, err := NewEmailService("us-east-1", "", "Name Game", "http://localhost:8080", false)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendReminderEmail(context.Background(), "ada@example.com", "Ada", 3))
}

func TestSendReminderEmail(t *testing.T) {
	ses := &fakeSES{}
	svc := &EmailService{
		client:     ses,
		fromEmail:  "game@example.com",
		fromName:   "Name Game",
		appBaseURL: "https://names.example.com",
		enabled:    true,
	}

	require.NoError(t, svc.SendReminderEmail(context.Background(), "ada@example.com", "Ada", 1))
	require.Len(t, ses.inputs, 1)

	in := ses.inputs[0]
	assert.Equal(t, "Name Game <game@example.com>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"ada@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "1 card is ready for review", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Text.Data), "https://names.example.com/")
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Html.Data), "Hi Ada,")
}

func TestSendReminderEmailFailure(t *testing.T) {
	svc := &EmailService{
		client:    &fakeSES{err: errors.New("throttled")},
		fromEmail: "game@example.com",
		enabled:   true,
	}

	err := svc.SendReminderEmail(context.Background(), "ada@example.com", "Ada", 4)
	assert.ErrorContains(t, err, "ada@example.com")
}

func TestReminderMessage(t *testing.T) {
	msg := reminderMessage{Name: "<b>Mallory</b>", Count: 7, PlayURL: "https://names.example.com/"}
	assert.Equal(t, "7 cards are ready for review", msg.Subject())

	html, text, err := msg.render()
	require.NoError(t, err)
	assert.Contains(t, html, "Hi &lt;b&gt;Mallory&lt;/b&gt;,")
	assert.NotContains(t, html, "<b>Mallory</b>")
	assert.Contains(t, html, `href="https://names.example.com/"`)
	assert.Contains(t, text, "Hi <b>Mallory</b>,")
	assert.Contains(t, text, "7 cards are due in the Name Game.")
}
