package entity

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrStoreNotInitialized = errors.New("data store is not initialized")
	ErrAuthNotInitialized  = errors.New("auth provider is not initialized")

	// General errors
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrDatabaseError    = errors.New("database error")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Provider error codes
const (
	AuthCodeInvalidEmail      = "auth/invalid-email"
	AuthCodeWeakPassword      = "auth/weak-password"
	AuthCodeEmailInUse        = "auth/email-already-in-use"
	AuthCodeUserNotFound      = "auth/user-not-found"
	AuthCodeWrongPassword     = "auth/wrong-password"
	AuthCodeInvalidCredential = "auth/invalid-credential"
	AuthCodeTooManyRequests   = "auth/too-many-requests"
	AuthCodeInvalidActionCode = "auth/invalid-action-code"
	AuthCodeEmailNotVerified  = "auth/email-not-verified"
	AuthCodeUserDisabled      = "auth/user-disabled"
)

// AuthError is returned by the identity provider.
type AuthError struct {
	Code    string
	Message string
}

func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// AuthCode returns the provider code carried by err, or "" if there is none.
func AuthCode(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}
