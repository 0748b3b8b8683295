package service

import (
	"context"
	"fmt"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridEmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendgridEmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (s *sendgridEmailService) Send(ctx context.Context, toEmail, subject, body string) error {
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", toEmail), body, body)
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", resp.StatusCode)
	}
	return nil
}
