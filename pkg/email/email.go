package email

import (
	"fmt"
	"net/smtp"
)

// Service sends emails via SMTP. It carries no domain knowledge; callers
// supply the recipient, subject and HTML body.
type Service struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
}

func NewService(cfg Config) *Service {
	from := cfg.FromEmail
	if from == "" {
		from = cfg.Username
	}
	return &Service{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: from,
	}
}

// IsConfigured reports whether SMTP credentials are present.
func (s *Service) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// Send delivers one HTML email. Returns an error when SMTP is not configured
// or delivery fails.
func (s *Service) Send(to, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.fromEmail, to, subject, htmlBody,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := s.host + ":" + s.port
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}
