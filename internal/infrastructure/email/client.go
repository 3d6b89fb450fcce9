// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/brightforge/brightforge-go/internal/domain/user"
	"github.com/brightforge/brightforge-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendLeadNotification(lead *user.Lead) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	notifyTo  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	notifyTo := os.Getenv("LEAD_NOTIFY_TO")
	if notifyTo == "" {
		return nil, fmt.Errorf("LEAD_NOTIFY_TO environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@brightforge.com"
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "BrightForge"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		notifyTo:  notifyTo,
	}, nil
}

// SendLeadNotification composes and sends the internal notification for a
// freshly captured lead.
func (c *ResendClient) SendLeadNotification(lead *user.Lead) error {
	subject := fmt.Sprintf("New lead: %s <%s>", lead.FirstName, lead.Email)

	content := templates.GetLeadNotificationContent(templates.LeadNotificationProps{
		FirstName: lead.FirstName,
		Email:     lead.Email,
		Company:   lead.Company,
		Interest:  lead.Interest,
		Message:   lead.Message,
		Channel:   lead.Channel,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: subject,
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.notifyTo},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send lead notification via Resend: %w", err)
	}

	return nil
}
