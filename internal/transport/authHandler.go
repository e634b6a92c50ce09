package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/identity"
	"github.com/ds124wfegd/trainhub/internal/session"
	"github.com/ds124wfegd/trainhub/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActionCodes consumes the one-time codes of emailed action links.
type ActionCodes interface {
	ApplyActionCode(ctx context.Context, code string) (*identity.ActionCode, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	controller *session.Controller
	actions    ActionCodes
	cookie     CookieConfig
}

func NewAuthHandler(controller *session.Controller, actions ActionCodes, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{controller: controller, actions: actions, cookie: cookie}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	OobCode     string `json:"oobCode"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sess *identity.Session) {
	if sess == nil {
		return
	}
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sess.Token, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

// sessionBody also returns the token for clients that send it as a Bearer header.
func sessionBody(result *session.Result) gin.H {
	body := gin.H{"state": result.State, "redirect": result.Redirect}
	if result.User != nil {
		body["user"] = result.User
	}
	if result.Session != nil {
		body["token"] = result.Session.Token
		body["expiresAt"] = result.Session.ExpiresAt
	}
	return body
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.controller.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session)
	c.JSON(http.StatusCreated, sessionBody(result))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.controller.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if entity.AuthCode(err) == entity.AuthCodeEmailNotVerified {
			h.clearSessionCookie(c)
		}
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session)
	c.JSON(http.StatusOK, sessionBody(result))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	result, err := h.controller.Logout(c.Request.Context(), middleware.Token(c))
	if err != nil {
		writeError(c, err)
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, sessionBody(result))
}

// Session returns the state resolved for the current request.
func (h *AuthHandler) Session(c *gin.Context) {
	snapshot, _ := middleware.SessionFrom(c)
	c.JSON(http.StatusOK, snapshot)
}

func (h *AuthHandler) Reload(c *gin.Context) {
	result, err := h.controller.Reload(c.Request.Context(), middleware.Token(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionBody(result))
}

func (h *AuthHandler) SendVerificationEmail(c *gin.Context) {
	if err := h.controller.SendVerificationEmail(c.Request.Context(), middleware.Token(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Verification email sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req emailRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	if err := h.controller.ResetPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password reset email sent"})
}

func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req confirmResetRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	if h.actions == nil {
		writeError(c, entity.ErrAuthNotInitialized)
		return
	}
	if err := h.actions.ConfirmPasswordReset(c.Request.Context(), req.OobCode, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated", "redirect": session.PathLogin})
}

// Action handles the links sent by email. A verification link applies its
// code and lands on the verify-success page with the query unchanged, a
// failed code lands on the verify-email page instead.
func (h *AuthHandler) Action(c *gin.Context) {
	query := c.Request.URL.Query()
	rawQuery := c.Request.URL.RawQuery

	switch query.Get("mode") {
	case identity.ModeVerifyEmail:
		target := session.PathVerifySuccess
		if code := query.Get("oobCode"); code != "" {
			if err := h.applyCode(c.Request.Context(), code); err != nil {
				logrus.WithField("email", query.Get("email")).Warnf("verification link rejected: %v", err)
				target = session.PathVerifyEmail
				rawQuery += "&error=" + url.QueryEscape(entity.AuthCode(err))
			}
		}
		c.Redirect(http.StatusFound, target+"?"+rawQuery)
	case identity.ModeResetPassword:
		c.Redirect(http.StatusFound, session.PathResetPassword+"?"+rawQuery)
	default:
		writeError(c, entity.NewAuthError(entity.AuthCodeInvalidActionCode, "Unsupported action mode."))
	}
}

func (h *AuthHandler) applyCode(ctx context.Context, code string) error {
	if h.actions == nil {
		return entity.ErrAuthNotInitialized
	}
	_, err := h.actions.ApplyActionCode(ctx, code)
	return err
}
