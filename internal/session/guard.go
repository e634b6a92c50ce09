package session

import "strings"

// Page paths used by the guard and the auth flows.
const (
	PathHome          = "/"
	PathLogin         = "/auth/login"
	PathVerifyEmail   = "/auth/verify-email"
	PathVerifySuccess = "/auth/verify-success"
	PathResetPassword = "/auth/reset-password"
)

type State string

const (
	StateUnknown    State = "unknown"
	StateAnonymous  State = "anonymous"
	StateUnverified State = "authenticated-unverified"
	StateVerified   State = "authenticated-verified"
)

func (s State) Authenticated() bool {
	return s == StateUnverified || s == StateVerified
}

func isAuthPage(path string) bool {
	return strings.Contains(path, "/auth/")
}

// Guard returns where a visitor in state should be sent from path, or ""
// when the page may be shown.
func Guard(state State, path string) string {
	switch {
	case state == StateAnonymous && !isAuthPage(path):
		return PathLogin
	case state == StateVerified && isAuthPage(path):
		return PathHome
	case state == StateUnverified && isAuthPage(path) && !strings.Contains(path, PathVerifyEmail):
		return PathVerifyEmail
	}
	return ""
}
