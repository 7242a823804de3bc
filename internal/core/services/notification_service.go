package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/config"
)

// NotificationService sends transactional email over SMTP. Sends run in a
// goroutine and failures are logged only; an unreachable mail server must
// never fail the operation that triggered the email.
type NotificationService struct {
	cfg config.SMTPConfig
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg config.SMTPConfig) *NotificationService {
	if cfg.Host == "" {
		log.Println("⚠️ SMTP_HOST not set, outbound email disabled")
	}
	return &NotificationService{cfg: cfg}
}

// SendUserWelcome emails a newly created user their initial password
func (s *NotificationService) SendUserWelcome(user *models.User, rawPassword string) {
	if s.cfg.Host == "" {
		return
	}

	subject := "Your Direct Debit Portal Account"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"An account has been created for you on the direct debit portal.\r\n\r\n"+
			"Email: %s\r\nPassword: %s\r\nRole: %s\r\n\r\n"+
			"Please log in and change your password immediately.\r\n",
		user.FullName(), user.Email, rawPassword, user.Role,
	)

	go func() {
		if err := s.send(user.Email, subject, body); err != nil {
			log.Printf("❌ Failed to send welcome email to %s: %v", user.Email, err)
			return
		}
		log.Printf("📧 Welcome email sent to %s", user.Email)
	}()
}

// send delivers a single plain-text message
func (s *NotificationService) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
