package session

import (
	"errors"

	"github.com/ds124wfegd/trainhub/internal/entity"
)

var messages = map[string]string{
	entity.AuthCodeInvalidCredential: "Invalid email or password. Please try again.",
	entity.AuthCodeUserNotFound:      "No account was found for this email address.",
	entity.AuthCodeWrongPassword:     "The password you entered is incorrect.",
	entity.AuthCodeEmailNotVerified:  "Please verify your email before logging in.",
	entity.AuthCodeTooManyRequests:   "Too many failed login attempts. Please try again later or reset your password.",
	entity.AuthCodeEmailInUse:        "This email is already registered. Please log in.",
	entity.AuthCodeInvalidEmail:      "The email address is not valid. Please check it and try again.",
	entity.AuthCodeWeakPassword:      "The password is too weak. Please use at least 6 characters.",
	entity.AuthCodeInvalidActionCode: "This link is invalid or has expired. Please request a new one.",
}

// Message turns an error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := messages[entity.AuthCode(err)]; ok {
		return msg
	}
	if errors.Is(err, entity.ErrAuthNotInitialized) {
		return "Authentication is not initialized. Please check your configuration."
	}
	if errors.Is(err, entity.ErrNotAuthenticated) {
		return "You are not signed in."
	}

	var authErr *entity.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return err.Error()
}
