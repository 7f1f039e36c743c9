// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/model"
)

// filterParamPrefix marks exact-filter query parameters, e.g. filter.level=beginner.
const filterParamPrefix = "filter."

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRecordID validates a record ID path parameter
func ValidateRecordID(recordID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if recordID == "" {
		result.AddError("id", "Record ID is required")
		return result
	}

	if strings.TrimSpace(recordID) != recordID {
		result.AddError("id", "Record ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

// ValidateCollectionName validates a collection name path parameter
func ValidateCollectionName(name string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if !config.ValidCollectionName(name) {
		result.AddError("name", fmt.Sprintf("Collection name '%s' must be 1-64 lowercase letters, digits, '-' or '_'", name))
	}
	return result
}

// ValidateCollectionSettings validates collection settings for creation
func ValidateCollectionSettings(settings *config.CollectionSettings) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if settings == nil {
		result.AddError("settings", "Collection settings are required")
		return result
	}

	if settings.Name == "" {
		result.AddError("name", "Collection name is required")
		return result
	}

	// Apply defaults before validation
	settings.ApplyDefaults()

	for _, conflict := range settings.ValidateFieldNames() {
		result.AddError("field_validation", conflict)
	}

	return result
}

// ParseRecords turns a decoded JSON body (one object or an array of objects) into records
// and checks that each one carries a usable id.
func ParseRecords(raw interface{}) ([]model.Record, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	var records []model.Record
	switch data := raw.(type) {
	case []interface{}:
		records = make([]model.Record, 0, len(data))
		for i, item := range data {
			recMap, isMap := item.(map[string]interface{})
			if !isMap {
				result.AddError(fmt.Sprintf("records[%d]", i), "Record is not a valid object")
				continue
			}
			records = append(records, recMap)
		}
	case map[string]interface{}:
		records = []model.Record{data}
	default:
		result.AddError("request_body", "Expecting a record object or an array of records")
		return nil, result
	}

	if result.HasErrors() {
		return nil, result
	}
	if len(records) == 0 {
		result.AddError("records", "No records provided")
		return nil, result
	}

	for i, rec := range records {
		field := fmt.Sprintf("records[%d].%s", i, model.RecordIDField)
		if _, exists := rec[model.RecordIDField]; !exists {
			result.AddError(field, "Record must have an 'id' field")
			continue
		}
		if _, ok := rec.GetRecordID(); !ok {
			result.AddError(field, "Record ID must be a non-empty string or an integer")
		}
	}

	if result.HasErrors() {
		return nil, result
	}
	return records, result
}

// ValidatePagination parses optional page and page_size query parameters.
// Missing values are returned as 0 so the collection applies its own defaults.
func ValidatePagination(c *gin.Context) (int, int, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	page := parseIntParam(c, "page", result)
	pageSize := parseIntParam(c, "page_size", result)

	if page < 0 {
		result.AddError("page", "Page number must be greater than 0")
	}
	if pageSize < 0 {
		result.AddError("page_size", "Page size must be greater than 0")
	}
	return page, pageSize, result
}

func parseIntParam(c *gin.Context, name string, result *ValidationResult) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		result.AddError(name, fmt.Sprintf("'%s' is not a valid integer", raw))
		return 0
	}
	return n
}

// ParseFilterParams collects filter.<field>=<value> query parameters.
// When a field is repeated the last value wins.
func ParseFilterParams(c *gin.Context) (map[string]string, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, filterParamPrefix) {
			continue
		}
		field := strings.TrimPrefix(key, filterParamPrefix)
		if strings.TrimSpace(field) == "" {
			result.AddError(key, "Filter parameter must name a field, e.g. filter.level")
			continue
		}
		if len(values) > 0 {
			filters[field] = values[len(values)-1]
		}
	}
	return filters, result
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
