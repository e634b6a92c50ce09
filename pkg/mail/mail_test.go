package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/ds124wfegd/trainhub/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSender struct {
	messages []Message
}

func (s *capturingSender) Send(_ context.Context, msg Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func TestMailerSendVerification(t *testing.T) {
	sender := &capturingSender{}
	mailer := NewMailer(sender, "Verify your email address for TrainHub")

	link := "http://localhost:8080/auth/verify-email?email=ann%40example.com"
	require.NoError(t, mailer.SendVerification(context.Background(), "ann@example.com", link))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "Verify your email address for TrainHub", msg.Subject)
	assert.Contains(t, msg.HTML, `href="http://localhost:8080/auth/verify-email?email=ann%40example.com"`)
	assert.Contains(t, msg.HTML, "24 hours")
}

func TestMailerEscapesLink(t *testing.T) {
	sender := &capturingSender{}
	mailer := NewMailer(sender, "subject")

	require.NoError(t, mailer.SendPasswordReset(context.Background(), "<b>x</b>@example.com", `javascript:alert(1)`))

	msg := sender.messages[0]
	assert.Equal(t, passwordResetSubject, msg.Subject)
	assert.NotContains(t, msg.HTML, "<b>x</b>")
	assert.NotContains(t, msg.HTML, `href="javascript:alert(1)"`)
}

func TestSMTPSender(t *testing.T) {
	sender := NewSMTPSender(&config.EmailConfig{
		From:     "noreply@trainhub.local",
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "pass",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	err := sender.Send(context.Background(), Message{To: "ann@example.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@trainhub.local", gotFrom)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(body, "\r\n\r\n<p>hi</p>"))
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, LogSender{}, NewSender(&config.EmailConfig{Enabled: false}))
	assert.IsType(t, &SMTPSender{}, NewSender(&config.EmailConfig{Enabled: true, Host: "h", Port: 25}))
}

func TestRelayClient(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "success", status: http.StatusOK, body: `{"success":true}`},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"email and verificationLink are required"}`, wantErr: "email and verificationLink are required"},
		{name: "server error without body", status: http.StatusInternalServerError, wantErr: "mail relay returned 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received RelayRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "s3cret", r.Header.Get(RelaySecretHeader))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewRelayClient(server.URL, "s3cret", time.Second)
			err := client.SendVerification(context.Background(), "ann@example.com", "http://link")

			assert.Equal(t, RelayRequest{Email: "ann@example.com", VerificationLink: "http://link"}, received)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
