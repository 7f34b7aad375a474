package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

const verificationEmailHTML = `<p>Your %s verification code is</p><h2>%s</h2><p>The code expires in %s.</p><p>&copy; %d %s</p>`

type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client  mailClient
	from    string
	orgName string
	expiry  time.Duration
}

func NewSendGridSender(apiKey, fromEmail, orgName string, expiry time.Duration) ports.CodeSender {
	return &SendGridSender{
		client:  sendgrid.NewSendClient(apiKey),
		from:    fromEmail,
		orgName: orgName,
		expiry:  expiry,
	}
}

func (s *SendGridSender) Send(_ context.Context, identifier domain.Identifier, code string) error {
	from := mail.NewEmail(s.orgName, s.from)
	to := mail.NewEmail("", identifier.Email)
	subject := s.orgName + " - Verification Code"
	plainTextContent := fmt.Sprintf("Your verification code is %s", code)
	htmlContent := fmt.Sprintf(verificationEmailHTML, s.orgName, code, s.expiry, time.Now().Year(), s.orgName)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	resp, err := s.client.Send(message)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send verification email to %s via SendGrid", identifier.Email)
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
