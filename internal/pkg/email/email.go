package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Subject kinds a review outcome can refer to
const (
	KindClubApplication = "club application"
	KindMembership      = "membership request"
	KindEvent           = "event"
	KindAnnouncement    = "announcement"
)

// ReviewOutcome describes the result of a review sent to the submitter
type ReviewOutcome struct {
	ToEmail  string
	ToName   string
	Kind     string // One of the Kind* constants
	Subject  string // Club name, event title or announcement title
	Approved bool
	Note     string
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendReviewOutcome(ctx context.Context, outcome ReviewOutcome) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for the application
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(toEmail string, message []byte) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.deliver
	return s
}

// SendReviewOutcome notifies the submitter that their item was approved or rejected
func (s *EmailServiceImpl) SendReviewOutcome(ctx context.Context, outcome ReviewOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if outcome.ToEmail == "" {
		return fmt.Errorf("review outcome without recipient")
	}

	// Without credentials the message is only logged (development mode)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", outcome.ToEmail).
			Str("kind", outcome.Kind).
			Bool("approved", outcome.Approved).
			Msg("SMTP credentials not configured - review outcome email not sent")
		return nil
	}

	subject, body := renderReviewOutcome(outcome, s.config.BaseURL)
	return s.send(outcome.ToEmail, s.buildMessage(outcome.ToEmail, subject, body))
}

func renderReviewOutcome(o ReviewOutcome, baseURL string) (subject, body string) {
	verdict := "rejected"
	colour := "#c0392b"
	if o.Approved {
		verdict = "approved"
		colour = "#27ae60"
	}
	subject = fmt.Sprintf("Your %s was %s - ClubHub", o.Kind, verdict)

	var note string
	if strings.TrimSpace(o.Note) != "" {
		note = fmt.Sprintf(`<p><strong>Reviewer note:</strong> %s</p>`, html.EscapeString(o.Note))
	}

	body = fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>Your %s <strong>%s</strong> has been <span style="color: %s; font-weight: bold;">%s</span>.</p>
				%s
				<p><a href="%s">Open ClubHub</a></p>
				<p>Best regards,<br>The ClubHub Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(o.ToName), o.Kind, html.EscapeString(o.Subject), colour, verdict, note, baseURL)
	return subject, body
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// deliver sends the message over SMTP
func (s *EmailServiceImpl) deliver(toEmail string, message []byte) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
