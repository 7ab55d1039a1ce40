package mail

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer sends transactional mail over SMTP. With no host configured it
// logs the mail instead, which is how local development runs.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewMailer(host, port, username, password, from string) *Mailer {
	return &Mailer{Host: host, Port: port, Username: username, Password: password, From: from}
}

// SendOTP mails the signup verification code.
func (m *Mailer) SendOTP(to, code string) error {
	subject := "Your Rojgar verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in one hour.", code)

	if m.Host == "" {
		log.Printf("SMTP not configured, OTP for %s: %s", to, code)
		return nil
	}

	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, msg)
}
