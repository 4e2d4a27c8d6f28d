package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendDecisionEmail(toEmail, toName string, decision DecisionMail) error
}

// DecisionMail carries the content of a request decision email
type DecisionMail struct {
	RequestID  int64
	ActionType string
	Status     string
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
}

// Sender abstracts the SMTP transport so messages can be captured in tests
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailServiceImpl implements EmailService on top of gomail
type EmailServiceImpl struct {
	config SMTPConfig
	sender Sender
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) *EmailServiceImpl {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if config.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: config.Host}
	}
	return &EmailServiceImpl{
		config: config,
		sender: dialer,
		logger: logger,
	}
}

// WithSender replaces the SMTP transport
func (s *EmailServiceImpl) WithSender(sender Sender) *EmailServiceImpl {
	s.sender = sender
	return s
}

var decisionTemplate = template.Must(template.New("decision").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello {{.Name}},</p>
		<p>Your request <strong>#{{.RequestID}}</strong> ({{.ActionType}}) has been <strong>{{.Status}}</strong>.</p>
		<p>Best regards,<br>The Student Union</p>
	</div>
</body>
</html>`))

// SendDecisionEmail tells a submitter how their request was decided
func (s *EmailServiceImpl) SendDecisionEmail(toEmail, toName string, decision DecisionMail) error {
	// Without credentials the mail is only logged (development setups)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Int64("requestID", decision.RequestID).
			Str("status", decision.Status).
			Msg("SMTP credentials not configured - decision email not sent")
		return nil
	}

	var body bytes.Buffer
	err := decisionTemplate.Execute(&body, struct {
		Name string
		DecisionMail
	}{Name: toName, DecisionMail: decision})
	if err != nil {
		return fmt.Errorf("failed to render decision email: %w", err)
	}

	subject := fmt.Sprintf("Request #%d %s", decision.RequestID, decision.Status)
	return s.sendHTMLEmail(toEmail, toName, subject, body.String())
}

func (s *EmailServiceImpl) sendHTMLEmail(toEmail, toName, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetAddressHeader("To", toEmail, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("host", s.config.Host).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
