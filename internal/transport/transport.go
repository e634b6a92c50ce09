package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/trainhub/internal/transport/middleware"
	"github.com/ds124wfegd/trainhub/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything InitRoutes wires.
type Handlers struct {
	Events     *EventHandler
	Trainers   *TrainerHandler
	Partners   *PartnerHandler
	Categories *EventCategoryHandler
	Dashboard  *DashboardHandler
	Auth       *AuthHandler
	Mail       *MailHandler

	Sessions   middleware.Resolver
	CookieName string
	Timeout    time.Duration
}

func InitRoutes(h Handlers) (*gin.Engine, error) {
	router := gin.New()

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Timeout(h.Timeout))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Mail relay, called by the session controller
	router.POST("/api/send-verification-email", h.Mail.SendVerificationEmail)

	sessions := router.Group("", middleware.Session(h.Sessions, h.CookieName))

	sessions.GET("/__/auth/action", h.Auth.Action)

	for _, path := range pagePaths() {
		sessions.GET(path, Page)
	}

	api := sessions.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/reset-password", h.Auth.ResetPassword)
			auth.POST("/confirm-reset", h.Auth.ConfirmReset)
			auth.POST("/send-verification-email", h.Auth.SendVerificationEmail)
			auth.POST("/reload", h.Auth.Reload)
			auth.GET("/session", h.Auth.Session)
		}

		data := api.Group("", middleware.RequireVerified())
		{
			h.Events.register(data.Group("/events"))
			h.Trainers.register(data.Group("/trainers"))
			h.Partners.register(data.Group("/partners"))
			h.Categories.register(data.Group("/event-categories"))

			dashboard := data.Group("/dashboard")
			dashboard.GET("/stats", h.Dashboard.Stats)
			dashboard.GET("/analytics", h.Dashboard.Analytics)
		}
	}

	return router, nil
}
