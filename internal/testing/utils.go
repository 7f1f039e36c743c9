// Package testing provides helpers for tests that need a populated catalog.
package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/internal/catalog"
	"github.com/learnflow/catalog/model"
	"github.com/learnflow/catalog/services"
)

// CreateTestEngine creates an engine rooted in a per-test temp dir.
func CreateTestEngine(t *testing.T) *catalog.Engine {
	t.Helper()
	return catalog.NewEngine(t.TempDir(), zap.NewNop(), catalog.Options{})
}

// CourseSettings returns the settings of the course list used across tests.
func CourseSettings() config.CollectionSettings {
	return config.CollectionSettings{
		Name:             "courses",
		SearchableFields: []string{"title", "description", "tags"},
		FilterableFields: []string{"level", "category"},
	}
}

// CourseRecords returns three courses. Their orders under each sort are:
// rating java, js, py; newest java, js, py; popular py, java, js.
func CourseRecords() []model.Record {
	return []model.Record{
		{"id": "js", "title": "JavaScript Fundamentals", "description": "Master the basics of JavaScript programming",
			"rating": 4.8, "reviews": 128.0, "level": "beginner", "category": "javascript",
			"tags": []interface{}{"JavaScript", "Web Development"}, "createdAt": "2024-01-15T09:00:00Z"},
		{"id": "java", "title": "Java Programming Masterclass", "description": "Learn Java programming from scratch",
			"rating": 4.9, "reviews": 256.0, "level": "intermediate", "category": "java",
			"tags": []interface{}{"Java", "OOP"}, "createdAt": "2024-03-02T09:00:00Z"},
		{"id": "py", "title": "Python for Data", "description": "Analyse data with pandas",
			"rating": 4.5, "reviews": 512.0, "level": "Beginner", "category": "python",
			"tags": []interface{}{"Python"}, "createdAt": "2023-11-20T09:00:00Z"},
	}
}

// CreateTestCollection creates a collection and fills it with records.
func CreateTestCollection(t *testing.T, manager services.CollectionManager, settings config.CollectionSettings, records []model.Record) services.CollectionAccessor {
	t.Helper()
	require.NoError(t, manager.CreateCollection(settings), "Failed to create test collection")

	coll, err := manager.GetCollection(settings.Name)
	require.NoError(t, err, "Failed to get collection accessor")

	if len(records) > 0 {
		require.NoError(t, coll.AddRecords(records), "Failed to add test records")
	}
	return coll
}

// CreateCourses creates the course collection with CourseRecords.
func CreateCourses(t *testing.T, manager services.CollectionManager) services.CollectionAccessor {
	t.Helper()
	return CreateTestCollection(t, manager, CourseSettings(), CourseRecords())
}
