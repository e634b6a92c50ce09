package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	tokenKey   = "sessionToken"
	sessionKey = "session"
)

type Resolver interface {
	Resolve(ctx context.Context, token string) (session.Snapshot, error)
}

// Session reads the token from the Authorization header or the session cookie
// and stores the resolved snapshot in the context.
func Session(resolver Resolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}

		snapshot, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logrus.Warnf("session not resolved: %v", err)
		}

		c.Set(tokenKey, token)
		c.Set(sessionKey, snapshot)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Token returns the session token of the request, "" when there is none.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func SessionFrom(c *gin.Context) (session.Snapshot, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return session.Snapshot{State: session.StateUnknown}, false
	}
	snapshot, ok := value.(session.Snapshot)
	return snapshot, ok
}

// RequireVerified lets through only sessions with a verified email.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, _ := SessionFrom(c)

		switch snapshot.State {
		case session.StateVerified:
			c.Next()
		case session.StateUnverified:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": session.Message(entity.NewAuthError(entity.AuthCodeEmailNotVerified, "")),
				"code":  entity.AuthCodeEmailNotVerified,
			})
		case session.StateAnonymous:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": session.Message(entity.ErrNotAuthenticated)})
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session state is unknown"})
		}
	}
}
