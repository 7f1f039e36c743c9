// Package config provides configuration structures for the catalog service.
// It defines per-collection browse settings and the application configuration file.
package config

import (
	"regexp"
	"strings"

	"github.com/learnflow/catalog/internal/view"
)

var collectionNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// CollectionSettings describes one browsable collection (courses, projects, study groups,
// resources) and which record fields the browse page searches, filters and ranks on.
type CollectionSettings struct {
	Name             string         `json:"name" yaml:"name"`                           // Unique name, also used as the on-disk directory name
	Title            string         `json:"title,omitempty" yaml:"title"`               // Human readable title shown above the list
	SearchableFields []string       `json:"searchable_fields" yaml:"searchable_fields"` // Fields the free-text term is matched against, in display priority order
	FilterableFields []string       `json:"filterable_fields" yaml:"filterable_fields"` // Fields exact filters may reference (e.g. level, category)
	RatingField      string         `json:"rating_field,omitempty" yaml:"rating_field"`
	CreatedAtField   string         `json:"created_at_field,omitempty" yaml:"created_at_field"`
	PopularityField  string         `json:"popularity_field,omitempty" yaml:"popularity_field"` // "reviews" for courses, "view_count" for resources
	ViewCountField   string         `json:"view_count_field,omitempty" yaml:"view_count_field"` // Incremented when a record is opened
	FeaturedField    string         `json:"featured_field,omitempty" yaml:"featured_field"`     // Optional boolean field; featured records are returned separately
	SortOptions      []view.SortKey `json:"sort_options,omitempty" yaml:"sort_options"`         // Strategies offered by the sort dropdown
	DefaultSort      view.SortKey   `json:"default_sort,omitempty" yaml:"default_sort"`
}

// ValidCollectionName reports whether name may be used as a collection name.
// Collection names double as directory names under the data dir.
func ValidCollectionName(name string) bool {
	return collectionNamePattern.MatchString(name)
}

// Ranking returns the sort field names for the view engine.
func (settings *CollectionSettings) Ranking() view.Ranking {
	return view.Ranking{
		RatingField:     settings.RatingField,
		CreatedAtField:  settings.CreatedAtField,
		PopularityField: settings.PopularityField,
	}
}

// IsSearchable reports whether field is configured for free-text matching.
func (settings *CollectionSettings) IsSearchable(field string) bool {
	return contains(settings.SearchableFields, field)
}

// IsFilterable reports whether field may be used in an exact filter.
func (settings *CollectionSettings) IsFilterable(field string) bool {
	return contains(settings.FilterableFields, field)
}

// OffersSort reports whether key is one of the collection's sort options.
func (settings *CollectionSettings) OffersSort(key view.SortKey) bool {
	if key == "" || key == view.SortNone {
		return true
	}
	for _, opt := range settings.SortOptions {
		if opt == key {
			return true
		}
	}
	return false
}

// ValidateFieldNames validates field names and sort configuration.
// It returns every conflict found rather than stopping at the first.
func (settings *CollectionSettings) ValidateFieldNames() []string {
	var conflicts []string

	if !ValidCollectionName(settings.Name) {
		conflicts = append(conflicts, "Collection name '"+settings.Name+"' must be 1-64 lowercase letters, digits, '-' or '_' and start with a letter or digit")
	}

	conflicts = append(conflicts, checkDuplicates("searchable_fields", settings.SearchableFields)...)
	conflicts = append(conflicts, checkDuplicates("filterable_fields", settings.FilterableFields)...)

	allFields := make([]string, 0, len(settings.SearchableFields)+len(settings.FilterableFields))
	allFields = append(allFields, settings.SearchableFields...)
	allFields = append(allFields, settings.FilterableFields...)
	for _, field := range allFields {
		if strings.TrimSpace(field) == "" {
			conflicts = append(conflicts, "Field name cannot be empty or whitespace-only")
		}
	}

	seenSort := make(map[view.SortKey]bool)
	for _, opt := range settings.SortOptions {
		if !opt.Known() {
			conflicts = append(conflicts, "Unknown sort option '"+string(opt)+"' in sort_options")
		}
		if seenSort[opt] {
			conflicts = append(conflicts, "Duplicate sort option '"+string(opt)+"' found in sort_options")
		}
		seenSort[opt] = true
	}

	if !settings.DefaultSort.Known() {
		conflicts = append(conflicts, "Unknown default_sort '"+string(settings.DefaultSort)+"'")
	} else if !settings.OffersSort(settings.DefaultSort) {
		conflicts = append(conflicts, "default_sort '"+string(settings.DefaultSort)+"' is not one of sort_options")
	}

	return conflicts
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, fields []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, field := range fields {
		if seen[field] {
			errors = append(errors, "Duplicate field '"+field+"' found in "+fieldName)
		}
		seen[field] = true
	}

	return errors
}

// ApplyDefaults applies default values to the collection settings
func (settings *CollectionSettings) ApplyDefaults() {
	ranking := view.DefaultRanking()
	if settings.RatingField == "" {
		settings.RatingField = ranking.RatingField
	}
	if settings.CreatedAtField == "" {
		settings.CreatedAtField = ranking.CreatedAtField
	}
	if settings.PopularityField == "" {
		settings.PopularityField = ranking.PopularityField
	}
	if settings.ViewCountField == "" {
		settings.ViewCountField = "view_count"
	}
	if settings.Title == "" {
		settings.Title = settings.Name
	}

	if settings.SearchableFields == nil {
		settings.SearchableFields = []string{}
	}
	if settings.FilterableFields == nil {
		settings.FilterableFields = []string{}
	}
	if len(settings.SortOptions) == 0 {
		settings.SortOptions = make([]view.SortKey, 0, len(view.SortKeys))
		for _, key := range view.SortKeys {
			if key != view.SortNone {
				settings.SortOptions = append(settings.SortOptions, key)
			}
		}
	}
	if settings.DefaultSort == "" {
		settings.DefaultSort = view.SortNone
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
