package transport

import (
	"net/http"

	"github.com/ds124wfegd/trainhub/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard service.DashboardService
}

func NewDashboardHandler(dashboard service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":   h.dashboard.Stats(),
		"loading": h.dashboard.Loading(),
	})
}

func (h *DashboardHandler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"analytics": h.dashboard.Analytics(),
		"loading":   h.dashboard.Loading(),
	})
}
