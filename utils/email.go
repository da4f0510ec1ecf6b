package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/agendafacil/agenda-api/config"
)

// Sender delivers application mail. It is an interface so handlers and
// jobs can run against a stub in tests.
type Sender interface {
	SendRecoveryCode(to, username, code string) error
	SendReminder(to, username, professionalName, when string) error
}

// Mailer sends through the SMTP settings in the config.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass),
		from:   cfg.EmailUser,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

// SendRecoveryCode mails the password-recovery code to the user.
func (m *Mailer) SendRecoveryCode(to, username, code string) error {
	subject := "Recuperação de senha"
	body := fmt.Sprintf(`
		<p>Olá %s,</p>
		<p>Seu código de recuperação de senha é:</p>
		<p><strong>%s</strong></p>
		<p>O código expira em uma hora. Se você não solicitou a recuperação, ignore este e-mail.</p>
	`, username, code)
	return m.send(to, subject, body)
}

// SendReminder mails an upcoming-appointment reminder to the patient.
func (m *Mailer) SendReminder(to, username, professionalName, when string) error {
	subject := "Lembrete: consulta em uma hora"
	body := fmt.Sprintf(`
		<p>Olá %s,</p>
		<p>Este é um lembrete da sua consulta com %s às %s.</p>
		<p>Se precisar cancelar, faça-o com antecedência.</p>
	`, username, professionalName, when)
	return m.send(to, subject, body)
}
