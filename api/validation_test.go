package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/learnflow/catalog/config"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}

	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %d", len(result.Errors))
	}

	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}
}

func TestValidateRecordID(t *testing.T) {
	tests := []struct {
		name      string
		recordID  string
		wantValid bool
	}{
		{name: "valid id", recordID: "course-1", wantValid: true},
		{name: "empty id", recordID: "", wantValid: false},
		{name: "padded id", recordID: " course-1 ", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRecordID(tt.recordID)
			if result.HasErrors() == tt.wantValid {
				t.Errorf("ValidateRecordID(%q) valid = %v, want %v (errors: %v)", tt.recordID, !result.HasErrors(), tt.wantValid, result.Errors)
			}
		})
	}
}

func TestValidateCollectionSettings(t *testing.T) {
	if result := ValidateCollectionSettings(nil); !result.HasErrors() {
		t.Error("Expected error for nil settings")
	}

	settings := &config.CollectionSettings{Name: "courses", SearchableFields: []string{"title"}}
	if result := ValidateCollectionSettings(settings); result.HasErrors() {
		t.Errorf("Expected valid settings, got %v", result.Errors)
	}
	if settings.PopularityField != "reviews" {
		t.Errorf("Expected defaults to be applied, got popularity field %q", settings.PopularityField)
	}

	bad := &config.CollectionSettings{Name: "courses", FilterableFields: []string{"level", "level"}}
	if result := ValidateCollectionSettings(bad); !result.HasErrors() {
		t.Error("Expected error for duplicate filterable fields")
	}
}

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name      string
		raw       interface{}
		wantCount int
		wantValid bool
	}{
		{name: "single object", raw: map[string]interface{}{"id": "a"}, wantCount: 1, wantValid: true},
		{name: "array", raw: []interface{}{map[string]interface{}{"id": "a"}, map[string]interface{}{"id": 2.0}}, wantCount: 2, wantValid: true},
		{name: "fractional id", raw: map[string]interface{}{"id": 2.5}, wantValid: false},
		{name: "missing id", raw: map[string]interface{}{"title": "x"}, wantValid: false},
		{name: "scalar body", raw: "x", wantValid: false},
		{name: "empty array", raw: []interface{}{}, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, result := ParseRecords(tt.raw)
			if result.HasErrors() == tt.wantValid {
				t.Fatalf("ParseRecords valid = %v, want %v (errors: %v)", !result.HasErrors(), tt.wantValid, result.Errors)
			}
			if len(records) != tt.wantCount {
				t.Errorf("Expected %d records, got %d", tt.wantCount, len(records))
			}
		})
	}
}

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"courses", false},
		{"study-groups", false},
		{"", true},
		{".", true},
		{"..", true},
		{"analytics.json", true},
		{"Courses", true},
		{"a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCollectionName(tt.name)
			if result.HasErrors() != tt.wantErr {
				t.Errorf("ValidateCollectionName(%q) errors = %v, wantErr %v", tt.name, result.Errors, tt.wantErr)
			}
		})
	}
}

func newQueryContext(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/collections/courses/browse?"+rawQuery, nil)
	return c
}

func TestParseFilterParams(t *testing.T) {
	c := newQueryContext("q=java&filter.level=beginner&filter.category=web&filter.category=java&sort=rating")
	filters, result := ParseFilterParams(c)
	if result.HasErrors() {
		t.Fatalf("Unexpected errors: %v", result.Errors)
	}
	if len(filters) != 2 {
		t.Fatalf("Expected 2 filters, got %v", filters)
	}
	if filters["level"] != "beginner" {
		t.Errorf("Expected level=beginner, got %q", filters["level"])
	}
	if filters["category"] != "java" {
		t.Errorf("Expected the last category value to win, got %q", filters["category"])
	}
}

func TestValidatePagination(t *testing.T) {
	page, pageSize, result := ValidatePagination(newQueryContext("page=3&page_size=15"))
	if result.HasErrors() || page != 3 || pageSize != 15 {
		t.Errorf("Expected page 3 size 15, got %d %d (errors: %v)", page, pageSize, result.Errors)
	}

	page, pageSize, result = ValidatePagination(newQueryContext(""))
	if result.HasErrors() || page != 0 || pageSize != 0 {
		t.Errorf("Expected zero values for missing params, got %d %d", page, pageSize)
	}

	if _, _, result = ValidatePagination(newQueryContext("page=-1")); !result.HasErrors() {
		t.Error("Expected error for negative page")
	}
	if _, _, result = ValidatePagination(newQueryContext("page_size=ten")); !result.HasErrors() {
		t.Error("Expected error for non-numeric page size")
	}
}
