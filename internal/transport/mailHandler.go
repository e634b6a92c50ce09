package transport

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/ds124wfegd/trainhub/pkg/mail"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type VerificationSender interface {
	SendVerification(ctx context.Context, email, link string) error
}

// MailHandler is the mail relay: it renders and sends the custom
// verification email for a given link. Only callers holding the shared
// secret are served.
type MailHandler struct {
	sender VerificationSender
	secret string
}

func NewMailHandler(sender VerificationSender, secret string) *MailHandler {
	return &MailHandler{sender: sender, secret: secret}
}

func (h *MailHandler) authorized(c *gin.Context) bool {
	if h.secret == "" {
		return false
	}
	got := c.GetHeader(mail.RelaySecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}

func (h *MailHandler) SendVerificationEmail(c *gin.Context) {
	if !h.authorized(c) {
		logrus.WithField("ip", c.ClientIP()).Warn("mail relay call without a valid secret")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req mail.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and verification link are required"})
		return
	}
	if req.Email == "" || req.VerificationLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and verification link are required"})
		return
	}

	if err := h.sender.SendVerification(c.Request.Context(), req.Email, req.VerificationLink); err != nil {
		logrus.WithField("email", req.Email).Errorf("Error sending verification email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
