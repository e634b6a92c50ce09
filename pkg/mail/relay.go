package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelaySecretHeader carries the shared secret the relay endpoint checks.
const RelaySecretHeader = "X-Relay-Secret"

// RelayRequest is the body accepted by the send-verification-email endpoint.
type RelayRequest struct {
	Email            string `json:"email"`
	VerificationLink string `json:"verificationLink"`
}

// RelayClient asks the mail relay endpoint to send a verification email.
type RelayClient struct {
	url        string
	secret     string
	httpClient *http.Client
}

func NewRelayClient(url, secret string, timeout time.Duration) *RelayClient {
	return &RelayClient{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RelayClient) SendVerification(ctx context.Context, email, link string) error {
	body, err := json.Marshal(RelayRequest{Email: email, VerificationLink: link})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RelaySecretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call mail relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &failure) == nil && failure.Error != "" {
			return fmt.Errorf("mail relay returned %d: %s", resp.StatusCode, failure.Error)
		}
		return fmt.Errorf("mail relay returned %d", resp.StatusCode)
	}
	return nil
}
