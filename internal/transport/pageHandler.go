package transport

import (
	"net/http"
	"strings"

	"github.com/ds124wfegd/trainhub/internal/session"
	"github.com/ds124wfegd/trainhub/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

var pageTitles = map[string]string{
	"/":                       "Dashboard",
	"/events":                 "Events",
	"/trainers":               "Trainers",
	"/partners":               "Partners",
	"/event-categories":       "Event Categories",
	"/analytics":              "Analytics",
	session.PathLogin:         "Login",
	"/auth/register":          "Register",
	"/auth/forgot-password":   "Forgot Password",
	session.PathResetPassword: "Reset Password",
	session.PathVerifyEmail:   "Verify Email",
	session.PathVerifySuccess: "Email Verified",
}

// Page renders the HTML shell after the route guard let the visitor through.
func Page(c *gin.Context) {
	path := c.Request.URL.Path
	snapshot, _ := middleware.SessionFrom(c)

	if target := session.Guard(snapshot.State, path); target != "" && target != path {
		c.Redirect(http.StatusFound, target)
		return
	}

	email := ""
	if snapshot.User != nil {
		email = snapshot.User.Email
	}
	c.HTML(http.StatusOK, "shell.html", gin.H{
		"Title": pageTitles[path],
		"Page":  strings.Trim(path, "/"),
		"State": snapshot.State,
		"Email": email,
	})
}

func pagePaths() []string {
	paths := make([]string, 0, len(pageTitles))
	for path := range pageTitles {
		paths = append(paths, path)
	}
	return paths
}
