package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/zvrva/eventy/config"
	"github.com/zvrva/eventy/internal/kafka"
)

// Sender delivers transactional mail over SMTP. Without SMTP settings it
// logs the message instead, so local setups work without a mail account.
type Sender struct {
	cfg config.SMTPConfig
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) SendTicketConfirmation(ctx context.Context, event kafka.TicketEvent) error {
	subject := fmt.Sprintf("Ticket Confirmation - %s", event.EventTitle)
	body := ticketConfirmationHTML(event)
	return s.send(ctx, event.UserEmail, subject, body)
}

func (s *Sender) SendPasswordReset(ctx context.Context, to, token string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf(`<h2>Password Reset</h2>
<p>Use the token below to reset your password. It expires shortly.</p>
<p><strong>%s</strong></p>
<p>If you did not request a reset, ignore this email.</p>`, token)
	return s.send(ctx, to, subject, body)
}

func (s *Sender) send(ctx context.Context, to, subject, htmlBody string) error {
	if !s.cfg.Configured() {
		log.Printf("smtp not configured, mock email to %s: %s", to, subject)
		return nil
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String()))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func ticketConfirmationHTML(event kafka.TicketEvent) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #0078d4;">Eventy</h1>
  <h2>Ticket Confirmation</h2>
  <h3>Event Details</h3>
  <p><strong>Event:</strong> %s</p>
  <p><strong>Date:</strong> %s</p>
  <p><strong>Time:</strong> %s</p>
  <p><strong>Location:</strong> %s</p>
  <p><strong>Category:</strong> %s</p>
  <h3>Booking Details</h3>
  <p><strong>Ticket ID:</strong> %s</p>
  <p><strong>Number of Tickets:</strong> %d</p>
  <p><strong>Total Amount:</strong> %s</p>
  <p><strong>Payment Method:</strong> %s</p>
  <h3>Your QR Code</h3>
  <p>Present this QR code at the event entrance:</p>
  <img src="%s" alt="Ticket QR Code" style="max-width: 200px;" />
  <p style="color: #666; font-size: 14px;">Thank you for choosing Eventy!</p>
</div>`,
		event.EventTitle, event.EventDate, event.EventTime, event.Location, event.Category,
		event.TicketCode, event.TicketCount, event.TotalPrice,
		strings.ToUpper(strings.ReplaceAll(event.Payment, "_", " ")),
		event.QRCode)
}
