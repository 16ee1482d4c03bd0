package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"gatherly-api/config"
)

// EmailService sends transactional mail. Every send is best effort: a
// failed notification is logged and never fails the request that caused it.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendInviteNotification tells the invitee someone invited them to an event.
func (es *EmailService) SendInviteNotification(inviteeEmail, inviterName, eventTitle string) error {
	subject := fmt.Sprintf("%s invited you to %s", inviterName, eventTitle)
	body := fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif;">
			<h2>You've been invited!</h2>
			<p><strong>%s</strong> invited you to <strong>%s</strong>.</p>
			<p>Log in to accept or decline the invitation.</p>
			<p>The %s Team</p>
		</body>
		</html>
	`, inviterName, eventTitle, es.config.FromName)

	return es.send(inviteeEmail, subject, body)
}

// SendWelcomeEmail greets a freshly registered user.
func (es *EmailService) SendWelcomeEmail(email, username string) error {
	subject := fmt.Sprintf("Welcome to %s!", es.config.FromName)
	body := fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif;">
			<h2>Welcome, %s!</h2>
			<p>Your account is ready. Host an event or follow your friends to see what they're attending.</p>
			<p>The %s Team</p>
		</body>
		</html>
	`, username, es.config.FromName)

	return es.send(email, subject, body)
}

func (es *EmailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(es.config.FromEmail, es.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
