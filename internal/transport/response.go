package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var authStatus = map[string]int{
	entity.AuthCodeInvalidEmail:      http.StatusBadRequest,
	entity.AuthCodeWeakPassword:      http.StatusBadRequest,
	entity.AuthCodeInvalidActionCode: http.StatusBadRequest,
	entity.AuthCodeEmailInUse:        http.StatusConflict,
	entity.AuthCodeUserNotFound:      http.StatusNotFound,
	entity.AuthCodeWrongPassword:     http.StatusUnauthorized,
	entity.AuthCodeInvalidCredential: http.StatusUnauthorized,
	entity.AuthCodeEmailNotVerified:  http.StatusForbidden,
	entity.AuthCodeUserDisabled:      http.StatusForbidden,
	entity.AuthCodeTooManyRequests:   http.StatusTooManyRequests,
}

func statusOf(err error) int {
	if status, ok := authStatus[entity.AuthCode(err)]; ok {
		return status
	}
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, entity.ErrStoreNotInitialized), errors.Is(err, entity.ErrAuthNotInitialized):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers with {"error": ...}. Auth errors carry their code and
// the message shown to the user.
func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logrus.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
	}
	_ = c.Error(err)

	body := gin.H{"error": session.Message(err)}
	if code := entity.AuthCode(err); code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil {
		return fmt.Errorf("%w: empty body", entity.ErrInvalidInput)
	}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", entity.ErrInvalidInput, err.Error())
	}
	return nil
}
