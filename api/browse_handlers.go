package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/internal/logger"
	"github.com/learnflow/catalog/internal/metrics"
	"github.com/learnflow/catalog/internal/view"
	"github.com/learnflow/catalog/model"
	"github.com/learnflow/catalog/services"
)

// BrowseHandler derives a view from a JSON request body.
// Request Body: services.BrowseRequest
func (api *API) BrowseHandler(c *gin.Context) {
	var req services.BrowseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	api.browse(c, req)
}

// BrowseQueryHandler derives a view from query parameters:
// ?q=&fields=title,tags&sort=rating&page=1&page_size=20&filter.level=beginner
func (api *API) BrowseQueryHandler(c *gin.Context) {
	page, pageSize, result := ValidatePagination(c)
	filters, filterResult := ParseFilterParams(c)
	result.Errors = append(result.Errors, filterResult.Errors...)
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	api.browse(c, services.BrowseRequest{
		Term:     c.Query("q"),
		Fields:   view.SplitFields(c.Query("fields")),
		Filters:  filters,
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
}

func (api *API) browse(c *gin.Context, req services.BrowseRequest) {
	name := c.Param("name")
	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	start := time.Now()
	results, err := coll.Browse(req)
	took := time.Since(start)
	if err != nil {
		metrics.ObserveBrowse(name, view.ParseSortKey(req.Sort), "error", took, 0)
		SendDomainError(c, "browse", err, false)
		return
	}
	metrics.ObserveBrowse(name, results.Sort, "ok", took, results.Total)

	if api.analytics != nil {
		api.analytics.TrackBrowseEvent(model.BrowseEvent{
			Collection:   name,
			Term:         req.Term,
			Sort:         string(results.Sort),
			FilterCount:  view.CountActiveFilters(req.Filters),
			ResponseTime: took,
			ResultCount:  results.Total,
		})
	}

	logger.FromContext(c.Request.Context()).Debug("browse",
		zap.String("collection", name),
		zap.String("sort", string(results.Sort)),
		zap.Int("total", results.Total),
		zap.String("query_id", results.QueryID),
	)

	c.JSON(http.StatusOK, results)
}
