package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler handles the request to get analytics data.
// Without an analytics service it responds 503.
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	if api.analytics == nil {
		SendError(c, http.StatusServiceUnavailable, ErrorCodeAnalyticsUnavailable, "Browse analytics are not enabled")
		return
	}
	c.JSON(http.StatusOK, api.analytics.GetDashboardData())
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "learnflow-catalog",
		"collections": len(api.manager.ListCollections()),
		"timestamp":   fmt.Sprintf("%d", time.Now().Unix()),
	})
}
