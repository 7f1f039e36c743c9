package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/internal/catalog"
	"github.com/learnflow/catalog/internal/view"
	"github.com/learnflow/catalog/services"
)

const testSeed = `
collections:
  - name: courses
    searchable_fields: [title, tags]
    filterable_fields: [level]
    records:
      - id: 1
        title: JavaScript Fundamentals
        rating: 4.8
        reviews: 128
        level: beginner
        tags: [JavaScript]
      - id: 2
        title: Java Programming Masterclass
        rating: 4.9
        reviews: 256
        level: intermediate
        tags: [Java]
  - name: projects
    searchable_fields: [title]
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	catalogFile, err := LoadFile(writeSeed(t, testSeed))
	require.NoError(t, err)
	require.Len(t, catalogFile.Collections, 2)

	courses := catalogFile.Collections[0]
	assert.Equal(t, "courses", courses.Name)
	assert.Equal(t, []string{"title", "tags"}, courses.SearchableFields)
	assert.Len(t, courses.Records, 2)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeSeed(t, "collections: [not: valid"))
	assert.Error(t, err)
}

func TestApply_CreatesMissingCollectionsOnly(t *testing.T) {
	eng := catalog.NewEngine(t.TempDir(), zap.NewNop(), catalog.Options{})
	catalogFile, err := LoadFile(writeSeed(t, testSeed))
	require.NoError(t, err)

	result, err := Apply(eng, catalogFile, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"courses", "projects"}, result.Created)
	assert.Empty(t, result.Skipped)

	courses, err := eng.GetCollection("courses")
	require.NoError(t, err)
	assert.Equal(t, 2, courses.Stats().RecordCount)

	// YAML integers become JSON numbers, so ids and counters look like pushed records
	rec, err := courses.GetRecord("1")
	require.NoError(t, err)
	assert.Equal(t, float64(128), rec["reviews"])

	browse, err := courses.Browse(services.BrowseRequest{Sort: string(view.SortPopular)})
	require.NoError(t, err)
	require.Len(t, browse.Records, 2)
	assert.Equal(t, "Java Programming Masterclass", browse.Records[0]["title"])

	// second run leaves existing collections alone
	require.NoError(t, courses.DeleteRecord("2"))
	result, err = Apply(eng, catalogFile, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Equal(t, []string{"courses", "projects"}, result.Skipped)
	assert.Equal(t, 1, courses.Stats().RecordCount)
}

func TestApply_InvalidSettings(t *testing.T) {
	eng := catalog.NewEngine(t.TempDir(), zap.NewNop(), catalog.Options{})
	catalogFile, err := LoadFile(writeSeed(t, `
collections:
  - name: Bad Name
`))
	require.NoError(t, err)

	_, err = Apply(eng, catalogFile, zap.NewNop())
	assert.Error(t, err)
}

func TestDefaultSeedFileIsValid(t *testing.T) {
	eng := catalog.NewEngine(t.TempDir(), zap.NewNop(), catalog.Options{})
	catalogFile, err := LoadFile(filepath.Join("..", "..", "configs", "seed.yaml"))
	require.NoError(t, err)

	result, err := Apply(eng, catalogFile, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"courses", "projects", "study-groups", "resources"}, result.Created)

	resources, err := eng.GetCollection("resources")
	require.NoError(t, err)
	browse, err := resources.Browse(services.BrowseRequest{})
	require.NoError(t, err)
	require.Len(t, browse.Featured, 1)
	assert.Equal(t, "r-go-tour", browse.Featured[0]["id"])
}
