package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/internal/analytics"
	"github.com/learnflow/catalog/internal/metrics"
	"github.com/learnflow/catalog/services"
)

// API holds dependencies for API handlers, primarily the collection manager.
type API struct {
	manager   services.CollectionManager
	analytics *analytics.Service
}

// NewAPI creates a new API handler structure. analyticsService may be nil, in which
// case browses are not tracked and /analytics responds 503.
func NewAPI(manager services.CollectionManager, analyticsService *analytics.Service) *API {
	return &API{
		manager:   manager,
		analytics: analyticsService,
	}
}

// NewRouter returns a gin engine with the standard middleware chain installed.
// Request logs go through a "http" child of logger.
func NewRouter(logger *zap.Logger, maxBodyBytes int64) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(
		RequestIDMiddleware(logger.Named("http")),
		AccessLogMiddleware(),
		gin.Recovery(),
		metrics.Middleware(),
		CORSMiddleware(),
		RequestSizeLimitMiddleware(maxBodyBytes),
	)
	return router
}

// SetupRoutes defines all the API routes for the catalog service.
func SetupRoutes(router *gin.Engine, api *API) {
	// Health check and operational routes
	router.GET("/health", api.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/analytics", api.GetAnalyticsHandler)

	// Collection management routes
	collectionRoutes := router.Group("/collections")
	{
		collectionRoutes.POST("", api.CreateCollectionHandler)                         // Create a new collection
		collectionRoutes.GET("", api.ListCollectionsHandler)                           // List all collections
		collectionRoutes.GET("/:name", api.GetCollectionHandler)                       // Get collection settings
		collectionRoutes.DELETE("/:name", api.DeleteCollectionHandler)                 // Delete a collection
		collectionRoutes.PATCH("/:name/settings", api.UpdateCollectionSettingsHandler) // Update collection settings
		collectionRoutes.GET("/:name/stats", api.GetCollectionStatsHandler)            // Get collection statistics
		collectionRoutes.GET("/:name/facets/:field", api.GetFacetsHandler)             // Distinct values of a filterable field

		// Record management routes per collection
		recordRoutes := collectionRoutes.Group("/:name/records")
		{
			recordRoutes.PUT("", api.AddRecordsHandler)            // Add/Update records
			recordRoutes.GET("", api.ListRecordsHandler)           // List records with pagination
			recordRoutes.DELETE("", api.DeleteAllRecordsHandler)   // Delete all records
			recordRoutes.GET("/:id", api.GetRecordHandler)         // Get specific record
			recordRoutes.DELETE("/:id", api.DeleteRecordHandler)   // Delete specific record
			recordRoutes.POST("/:id/views", api.RecordViewHandler) // Count a view of a record
		}

		// Derived view routes per collection
		collectionRoutes.GET("/:name/browse", api.BrowseQueryHandler)
		collectionRoutes.POST("/:name/_browse", api.BrowseHandler)
	}
}
