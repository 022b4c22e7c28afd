package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendBillEmail(ctx context.Context, toEmail, residentName string, summary BillEmailSummary) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(residentName, toEmail)

	subject := fmt.Sprintf("Your invoice for %02d/%d", summary.PeriodMonth, summary.PeriodYear)
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYour invoice %s for %02d/%d has been issued.\n\nTotal: %d VND\nDue date: %s\n\nPlease settle the invoice before the due date to avoid late fees.",
		residentName, summary.BillNo, summary.PeriodMonth, summary.PeriodYear,
		summary.TotalAmount, summary.DueDate.Format("2006-01-02"),
	)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Invoice %s</h2>
				<p>Hello <strong>%s</strong>,</p>
				<p>Your invoice for <strong>%02d/%d</strong> has been issued.</p>
				<p>Total: <strong>%d VND</strong><br>Due date: <strong>%s</strong></p>
			</body>
		</html>
	`, summary.BillNo, residentName, summary.PeriodMonth, summary.PeriodYear,
		summary.TotalAmount, summary.DueDate.Format("2006-01-02"))

	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send bill email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}
