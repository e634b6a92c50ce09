// Package mail renders and sends the account emails.
package mail

import (
	"context"
	"fmt"
)

const passwordResetSubject = "Reset your TrainHub password"

type Mailer struct {
	sender  Sender
	subject string
}

// NewMailer uses subject for verification emails.
func NewMailer(sender Sender, subject string) *Mailer {
	return &Mailer{sender: sender, subject: subject}
}

func (m *Mailer) SendVerification(ctx context.Context, email, link string) error {
	html, err := render(verificationTemplate, email, link)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	return m.sender.Send(ctx, Message{To: email, Subject: m.subject, HTML: html})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, link string) error {
	html, err := render(passwordResetTemplate, email, link)
	if err != nil {
		return fmt.Errorf("render password reset email: %w", err)
	}
	return m.sender.Send(ctx, Message{To: email, Subject: passwordResetSubject, HTML: html})
}
