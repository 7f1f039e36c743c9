package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/internal/view"
)

// CreateCollectionHandler handles the request to create a new collection.
// Request Body: config.CollectionSettings
func (api *API) CreateCollectionHandler(c *gin.Context) {
	var settings config.CollectionSettings

	// Validate JSON binding
	if result := ValidateJSONBinding(c, &settings); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	// Validate collection settings
	if result := ValidateCollectionSettings(&settings); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	if err := api.manager.CreateCollection(settings); err != nil {
		SendDomainError(c, "create collection", err, true)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Collection '" + settings.Name + "' created successfully",
		"collection": settings,
	})
}

// ListCollectionsHandler lists all available collections.
func (api *API) ListCollectionsHandler(c *gin.Context) {
	names := api.manager.ListCollections()
	c.JSON(http.StatusOK, gin.H{"collections": names, "count": len(names)})
}

// GetCollectionHandler retrieves the settings of a specific collection.
func (api *API) GetCollectionHandler(c *gin.Context) {
	name := c.Param("name")
	settings, err := api.manager.GetCollectionSettings(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// DeleteCollectionHandler handles deleting a collection.
func (api *API) DeleteCollectionHandler(c *gin.Context) {
	name := c.Param("name")
	if result := ValidateCollectionName(name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	if err := api.manager.DeleteCollection(name); err != nil {
		SendDomainError(c, "delete collection", err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection '" + name + "' deleted successfully"})
}

// UpdateCollectionSettingsRequest holds the settings a PATCH may change.
// Absent keys leave the current value in place.
type UpdateCollectionSettingsRequest struct {
	Title            *string         `json:"title,omitempty"`
	SearchableFields *[]string       `json:"searchable_fields,omitempty"`
	FilterableFields *[]string       `json:"filterable_fields,omitempty"`
	RatingField      *string         `json:"rating_field,omitempty"`
	CreatedAtField   *string         `json:"created_at_field,omitempty"`
	PopularityField  *string         `json:"popularity_field,omitempty"`
	ViewCountField   *string         `json:"view_count_field,omitempty"`
	FeaturedField    *string         `json:"featured_field,omitempty"`
	SortOptions      *[]view.SortKey `json:"sort_options,omitempty"`
	DefaultSort      *view.SortKey   `json:"default_sort,omitempty"`
}

// apply copies every provided value onto settings and reports whether anything was set.
func (r UpdateCollectionSettingsRequest) apply(settings *config.CollectionSettings) bool {
	updated := false
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			updated = true
		}
	}
	setString(&settings.Title, r.Title)
	setString(&settings.RatingField, r.RatingField)
	setString(&settings.CreatedAtField, r.CreatedAtField)
	setString(&settings.PopularityField, r.PopularityField)
	setString(&settings.ViewCountField, r.ViewCountField)
	setString(&settings.FeaturedField, r.FeaturedField)

	if r.SearchableFields != nil {
		settings.SearchableFields = *r.SearchableFields
		updated = true
	}
	if r.FilterableFields != nil {
		settings.FilterableFields = *r.FilterableFields
		updated = true
	}
	if r.SortOptions != nil {
		settings.SortOptions = *r.SortOptions
		updated = true
	}
	if r.DefaultSort != nil {
		settings.DefaultSort = view.ParseSortKey(string(*r.DefaultSort))
		updated = true
	}
	return updated
}

// UpdateCollectionSettingsHandler handles requests to update collection settings
func (api *API) UpdateCollectionSettingsHandler(c *gin.Context) {
	name := c.Param("name")

	settings, err := api.manager.GetCollectionSettings(name)
	if err != nil {
		SendDomainError(c, "get collection settings", err, false)
		return
	}

	var req UpdateCollectionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if !req.apply(&settings) {
		result := &ValidationResult{Valid: true}
		result.AddError("request_body", "No updatable settings provided")
		SendStructuredValidationError(c, result)
		return
	}

	if err := api.manager.UpdateCollectionSettings(name, settings); err != nil {
		SendDomainError(c, "update collection settings", err, true)
		return
	}

	updated, err := api.manager.GetCollectionSettings(name)
	if err != nil {
		SendDomainError(c, "get collection settings", err, false)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings for collection '" + name + "' updated successfully",
		"settings": updated,
	})
}

// GetCollectionStatsHandler returns record count, revision and memo usage for a collection.
func (api *API) GetCollectionStatsHandler(c *gin.Context) {
	name := c.Param("name")
	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}
	c.JSON(http.StatusOK, coll.Stats())
}

// GetFacetsHandler returns the distinct values of a filterable field, for filter dropdowns.
func (api *API) GetFacetsHandler(c *gin.Context) {
	name := c.Param("name")
	field := c.Param("field")

	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	values, err := coll.Facets(field)
	if err != nil {
		SendDomainError(c, "get facets", err, false)
		return
	}

	c.JSON(http.StatusOK, gin.H{"field": field, "values": values, "count": len(values)})
}
