package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/devoriginal/account-backend/config"
	"github.com/devoriginal/account-backend/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names
const (
	TemplateForget               = "forget"
	TemplateResetPasswordConfirm = "reset-password-confirm"
)

// Message is a templated mail addressed to a single recipient
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]interface{}
}

type Mailer interface {
	Send(msg Message) error
}

// Render executes the named embedded template with data
func Render(name string, data map[string]interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name+".html")
	if err != nil {
		return "", fmt.Errorf("unknown mail template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render mail template %q: %w", name, err)
	}
	return buf.String(), nil
}

type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.MailConfig) Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpMailer{
		addr: cfg.Host + ":" + cfg.Port,
		auth: auth,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

func (m *smtpMailer) Send(msg Message) error {
	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	logger.Debug("Sending mail", map[string]interface{}{
		"to":       msg.To,
		"template": msg.Template,
	})

	if err := m.send(m.addr, m.auth, m.from, []string{msg.To}, buildMIME(m.from, msg.To, msg.Subject, body)); err != nil {
		logger.Error("Failed to send mail", err, map[string]interface{}{
			"to":       msg.To,
			"template": msg.Template,
		})
		return fmt.Errorf("failed to send mail: %w", err)
	}

	logger.Info("Mail sent", map[string]interface{}{
		"to":       msg.To,
		"template": msg.Template,
	})
	return nil
}

func buildMIME(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

type logMailer struct{}

// NewLogMailer returns a Mailer that renders and logs messages instead of delivering them.
// Used when SMTP is not configured.
func NewLogMailer() Mailer {
	return &logMailer{}
}

func (m *logMailer) Send(msg Message) error {
	if _, err := Render(msg.Template, msg.Data); err != nil {
		return err
	}
	logger.Info("Mail delivery disabled, message dropped", map[string]interface{}{
		"to":       msg.To,
		"subject":  msg.Subject,
		"template": msg.Template,
	})
	return nil
}

// New picks SMTP delivery when configured, logging otherwise
func New(cfg config.MailConfig) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	logger.Warn("SMTP not configured, mails will only be logged")
	return NewLogMailer()
}
