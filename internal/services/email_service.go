package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendLoginCode(email, name, code string) error
}

type emailService struct {
	send func(m ...*gomail.Message) error
	from string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		send: dialer.DialAndSend,
		from: fromEmail,
	}
}

func (s *emailService) SendLoginCode(email, name, code string) error {
	m := buildLoginCodeMessage(s.from, email, name, code)
	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send login code email: %w", err)
	}
	log.Printf("[email] login code sent to %s", email)
	return nil
}

func buildLoginCodeMessage(from, email, name, code string) *gomail.Message {
	if name == "" {
		name = "Usuário"
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("%s - Código de Verificação", code))

	body := fmt.Sprintf(`
		<h2>Geek Deals</h2>
		<p>Olá %s, use o código abaixo para confirmar seu login:</p>
		<p style="font-size:32px;font-weight:bold;letter-spacing:6px">%s</p>
		<p>Esse código expira em 10 minutos.<br>Se você não solicitou isso, pode ignorar este email.</p>
	`, name, code)
	m.SetBody("text/html", body)
	return m
}

// logEmailService is the testing transport used when no SMTP server is configured.
// Nothing leaves the process; the message is only recorded in the log.
type logEmailService struct {
	from string
}

func NewLogEmailService(fromEmail string) EmailService {
	return &logEmailService{from: fromEmail}
}

func (s *logEmailService) SendLoginCode(email, name, code string) error {
	log.Printf("[email][test-transport] from=%s to=%s subject=%q (SMTP not configured)", s.from, email, "Código de Verificação")
	return nil
}
