package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log"
	texttemplate "text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Email service will skip sending all emails")
		}
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] App Base URL: %s", appBaseURL)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendReminderEmail tells a player how many cards are waiting for review
func (s *EmailService) SendReminderEmail(ctx context.Context, toEmail, toName string, dueCount int) error {
	if s.debug {
		log.Printf("[DEBUG] SendReminderEmail called: to=%s, name=%s, due=%d", toEmail, toName, dueCount)
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): reminder to %s", toEmail)
		return nil
	}

	msg := reminderMessage{Name: toName, Count: dueCount, PlayURL: s.appBaseURL + "/"}
	htmlBody, textBody, err := msg.render()
	if err != nil {
		return fmt.Errorf("failed to render reminder email: %w", err)
	}

	return s.sendEmail(ctx, toEmail, msg.Subject(), htmlBody, textBody)
}

// reminderMessage is the data behind a due-card reminder
type reminderMessage struct {
	Name    string
	Count   int
	PlayURL string
}

// Cards is "1 card is" or "N cards are"
func (m reminderMessage) Cards() string {
	if m.Count == 1 {
		return "1 card is"
	}
	return fmt.Sprintf("%d cards are", m.Count)
}

func (m reminderMessage) Subject() string {
	return m.Cards() + " ready for review"
}

func (m reminderMessage) render() (string, string, error) {
	var html, text bytes.Buffer
	if err := reminderHTML.Execute(&html, m); err != nil {
		return "", "", err
	}
	if err := reminderText.Execute(&text, m); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}

// Player names come from the OAuth provider, so the HTML body is escaped
var reminderHTML = htmltemplate.Must(htmltemplate.New("reminder").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.card { max-width: 560px; margin: 0 auto; padding: 24px; border-top: 6px solid #28a745; background: #f9f9f9; }
		.play { display: inline-block; padding: 12px 30px; background-color: #28a745; color: white; text-decoration: none; border-radius: 5px; }
		.small { font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="card">
		<h2>Time for a quick round</h2>
		<p>Hi {{.Name}},</p>
		<p>{{.Cards}} due in the Name Game. A few minutes now keeps faces and names from slipping away.</p>
		<p><a href="{{.PlayURL}}" class="play">Play now</a></p>
		<p class="small">You get at most one of these a day while cards are waiting.</p>
	</div>
</body>
</html>
`))

var reminderText = texttemplate.Must(texttemplate.New("reminder").Parse(`Hi {{.Name}},

{{.Cards}} due in the Name Game. A few minutes now keeps faces and names from slipping away.

Play now: {{.PlayURL}}

You get at most one of these a day while cards are waiting.
`))

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] From address: %s", fromAddress)
		log.Printf("[DEBUG] To address: %s", toEmail)
		log.Printf("[DEBUG] Subject: %s", subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
