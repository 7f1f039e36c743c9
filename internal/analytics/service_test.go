package analytics

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/model"
	"github.com/learnflow/catalog/services"
)

// MockCollectionManager is a simple mock for testing
type MockCollectionManager struct {
	collections []string
}

func (m *MockCollectionManager) CreateCollection(_ config.CollectionSettings) error { return nil }
func (m *MockCollectionManager) GetCollection(name string) (services.CollectionAccessor, error) {
	return nil, fmt.Errorf("collection %s not available in mock", name)
}
func (m *MockCollectionManager) GetCollectionSettings(_ string) (config.CollectionSettings, error) {
	return config.CollectionSettings{}, nil
}
func (m *MockCollectionManager) UpdateCollectionSettings(_ string, _ config.CollectionSettings) error {
	return nil
}
func (m *MockCollectionManager) DeleteCollection(_ string) error  { return nil }
func (m *MockCollectionManager) ListCollections() []string        { return m.collections }
func (m *MockCollectionManager) PersistCollection(_ string) error { return nil }

func newTestService(t *testing.T, collections ...string) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	return NewService(&MockCollectionManager{collections: collections}, dir, zap.NewNop()), dir
}

func TestAnalyticsService_TrackBrowseEvent(t *testing.T) {
	service, _ := newTestService(t, "courses")

	service.TrackBrowseEvent(model.BrowseEvent{
		Collection:   "courses",
		Term:         "javascript",
		Sort:         "rating",
		FilterCount:  1,
		ResponseTime: 2 * time.Millisecond,
		ResultCount:  3,
	})

	require.Len(t, service.events, 1)
	assert.False(t, service.events[0].Timestamp.IsZero(), "timestamp is set on tracking")
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	service, _ := newTestService(t, "courses", "resources")
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	events := []model.BrowseEvent{
		{Collection: "courses", Term: "JavaScript", Sort: "rating", FilterCount: 1, ResponseTime: 2 * time.Millisecond, ResultCount: 2},
		{Collection: "courses", Term: "javascript ", Sort: "newest", ResponseTime: 4 * time.Millisecond, ResultCount: 1},
		{Collection: "resources", Term: "kotlin", Sort: "bogus", ResponseTime: 6 * time.Millisecond, ResultCount: 0},
		{Collection: "resources", Term: "", Sort: "", ResponseTime: 0, ResultCount: 10},
	}
	for _, e := range events {
		service.TrackBrowseEvent(e)
	}

	// age one event past the 24h window
	service.events[0].Timestamp = now.Add(-48 * time.Hour)

	dashboard := service.GetDashboardData()
	assert.Equal(t, 4, dashboard.TotalBrowses)
	assert.Equal(t, 3, dashboard.BrowsesLast24h)
	assert.Equal(t, 4, dashboard.BrowsesLast7d)
	assert.InDelta(t, 3.0, dashboard.AvgResponseTimeMs, 0.001)
	assert.InDelta(t, 0.25, dashboard.FilteredBrowseRatio, 0.001)

	require.Len(t, dashboard.TopTerms, 2)
	assert.Equal(t, model.PopularTerm{Term: "javascript", BrowseCount: 2}, dashboard.TopTerms[0])
	assert.Equal(t, []model.PopularTerm{{Term: "kotlin", BrowseCount: 1}}, dashboard.ZeroResultTerms)

	assert.Equal(t, model.SortUsage{None: 1, Rating: 1, Newest: 1, Unknown: 1}, dashboard.Sorts)

	require.Len(t, dashboard.Collections, 2)
	assert.Equal(t, model.CollectionStats{Collection: "courses", BrowseCount: 2}, dashboard.Collections[0])
	assert.Equal(t, model.CollectionStats{Collection: "resources", BrowseCount: 2}, dashboard.Collections[1])
}

func TestAnalyticsService_EmptyDashboard(t *testing.T) {
	service, _ := newTestService(t)
	dashboard := service.GetDashboardData()
	assert.Equal(t, 0, dashboard.TotalBrowses)
	assert.Equal(t, 0.0, dashboard.AvgResponseTimeMs)
	assert.Empty(t, dashboard.TopTerms)
}

func TestAnalyticsService_KeepsLatestEvents(t *testing.T) {
	service, _ := newTestService(t)
	for i := 0; i < maxEventsToKeep+5; i++ {
		service.TrackBrowseEvent(model.BrowseEvent{Collection: "courses", ResultCount: i})
	}
	require.Len(t, service.events, maxEventsToKeep)
	assert.Equal(t, 5, service.events[0].ResultCount)
}

func TestAnalyticsService_FlushAndReload(t *testing.T) {
	service, dir := newTestService(t, "courses")
	service.TrackBrowseEvent(model.BrowseEvent{Collection: "courses", Term: "go", ResultCount: 1})

	require.NoError(t, service.Flush())
	require.NoError(t, service.Flush(), "flushing without changes is a no-op")

	reloaded := NewService(&MockCollectionManager{}, dir, zap.NewNop())
	require.Len(t, reloaded.events, 1)
	assert.Equal(t, "go", reloaded.events[0].Term)
}

func TestAnalyticsService_RunFlushesOnCancel(t *testing.T) {
	service, dir := newTestService(t)
	service.TrackBrowseEvent(model.BrowseEvent{Collection: "projects", Term: "robotics"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	reloaded := NewService(&MockCollectionManager{}, dir, zap.NewNop())
	require.Len(t, reloaded.events, 1)
}

func TestAnalyticsService_ConcurrentFlushesKeepNewestSnapshot(t *testing.T) {
	service, dir := newTestService(t, "courses")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				service.TrackBrowseEvent(model.BrowseEvent{Collection: "courses", Term: "go"})
				assert.NoError(t, service.Flush())
			}
		}()
	}
	wg.Wait()

	reloaded := NewService(&MockCollectionManager{}, dir, zap.NewNop())
	assert.Len(t, reloaded.events, 200)
}
