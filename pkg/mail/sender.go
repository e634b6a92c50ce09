package mail

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/ds124wfegd/trainhub/config"
	"github.com/sirupsen/logrus"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	host     string
	port     int
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := s.host + ":" + strconv.Itoa(s.port)
	if err := s.sendMail(addr, s.auth, s.from, []string{msg.To}, buildMessage(s.from, msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// LogSender only logs outgoing mail. Used when SMTP is disabled.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email delivery disabled, message dropped")
	return nil
}

// NewSender picks the SMTP sender when email is enabled in cfg.
func NewSender(cfg *config.EmailConfig) Sender {
	if !cfg.Enabled {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
