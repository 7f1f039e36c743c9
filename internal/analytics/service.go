package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/learnflow/catalog/internal/view"
	"github.com/learnflow/catalog/model"
	"github.com/learnflow/catalog/services"
)

const (
	analyticsDataFile = "analytics.json"
	maxEventsToKeep   = 10000 // Keep last 10k events for performance
	topTermsLimit     = 10
	flushInterval     = 30 * time.Second
)

// Service implements browse analytics tracking and reporting
type Service struct {
	mutex        sync.RWMutex
	saveMu       sync.Mutex // serializes Flush
	events       []model.BrowseEvent
	dirty        bool
	collections  services.CollectionManager
	dataFilePath string
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a new analytics service storing its events under dataDir.
func NewService(collections services.CollectionManager, dataDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &Service{
		events:       make([]model.BrowseEvent, 0),
		collections:  collections,
		dataFilePath: filepath.Join(dataDir, analyticsDataFile),
		logger:       logger.Named("analytics"),
		now:          time.Now,
	}

	if err := service.loadData(); err != nil {
		service.logger.Warn("failed to load analytics data", zap.Error(err))
	}

	return service
}

// TrackBrowseEvent records a new browse event. Events are flushed to disk by Run or Flush.
func (s *Service) TrackBrowseEvent(event model.BrowseEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	event.Timestamp = s.now()
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.dirty = true
}

// Run flushes pending events periodically until ctx is cancelled, then flushes once more.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(); err != nil {
				s.logger.Warn("final analytics flush failed", zap.Error(err))
			}
			return
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				s.logger.Warn("analytics flush failed", zap.Error(err))
			}
		}
	}
}

// Flush writes pending events to disk if anything changed since the last flush.
// Flushes run one at a time, so a newer snapshot is never overwritten by an older one.
func (s *Service) Flush() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.Lock()
	if !s.dirty {
		s.mutex.Unlock()
		return nil
	}
	snapshot := make([]model.BrowseEvent, len(s.events))
	copy(snapshot, s.events)
	s.dirty = false
	s.mutex.Unlock()

	if err := s.saveData(snapshot); err != nil {
		s.mutex.Lock()
		s.dirty = true
		s.mutex.Unlock()
		return err
	}
	return nil
}

// GetDashboardData returns the complete analytics dashboard
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	events := make([]model.BrowseEvent, len(s.events))
	copy(events, s.events)
	s.mutex.RUnlock()

	now := s.now()
	dashboard := model.AnalyticsDashboard{
		TotalBrowses:    len(events),
		BrowsesLast24h:  countSince(events, now.Add(-24*time.Hour)),
		BrowsesLast7d:   countSince(events, now.Add(-7*24*time.Hour)),
		TopTerms:        topTerms(events, false),
		ZeroResultTerms: topTerms(events, true),
		Collections:     s.collectionStats(events),
		Sorts:           sortUsage(events),
		GeneratedAt:     now,
	}

	if len(events) > 0 {
		var total time.Duration
		filtered := 0
		for _, e := range events {
			total += e.ResponseTime
			if e.FilterCount > 0 {
				filtered++
			}
		}
		dashboard.AvgResponseTimeMs = float64(total.Microseconds()) / float64(len(events)) / 1000
		dashboard.FilteredBrowseRatio = float64(filtered) / float64(len(events))
	}
	return dashboard
}

func countSince(events []model.BrowseEvent, after time.Time) int {
	n := 0
	for _, e := range events {
		if e.Timestamp.After(after) {
			n++
		}
	}
	return n
}

// topTerms aggregates non-empty terms case-insensitively. With zeroOnly set only
// browses that returned nothing are counted.
func topTerms(events []model.BrowseEvent, zeroOnly bool) []model.PopularTerm {
	counts := make(map[string]int)
	for _, e := range events {
		term := strings.ToLower(strings.TrimSpace(e.Term))
		if term == "" || (zeroOnly && e.ResultCount > 0) {
			continue
		}
		counts[term]++
	}

	terms := make([]model.PopularTerm, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, model.PopularTerm{Term: term, BrowseCount: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].BrowseCount != terms[j].BrowseCount {
			return terms[i].BrowseCount > terms[j].BrowseCount
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > topTermsLimit {
		terms = terms[:topTermsLimit]
	}
	return terms
}

func (s *Service) collectionStats(events []model.BrowseEvent) []model.CollectionStats {
	browseCounts := make(map[string]int)
	for _, e := range events {
		browseCounts[e.Collection]++
	}

	names := s.collections.ListCollections()
	stats := make([]model.CollectionStats, 0, len(names))
	for _, name := range names {
		recordCount := 0
		if coll, err := s.collections.GetCollection(name); err == nil {
			recordCount = coll.Stats().RecordCount
		}
		stats = append(stats, model.CollectionStats{
			Collection:  name,
			RecordCount: recordCount,
			BrowseCount: browseCounts[name],
		})
	}
	return stats
}

func sortUsage(events []model.BrowseEvent) model.SortUsage {
	var usage model.SortUsage
	for _, e := range events {
		switch view.SortKey(e.Sort) {
		case "", view.SortNone:
			usage.None++
		case view.SortRating:
			usage.Rating++
		case view.SortNewest:
			usage.Newest++
		case view.SortPopular:
			usage.Popular++
		default:
			usage.Unknown++
		}
	}
	return usage
}

// loadData loads analytics data from file
func (s *Service) loadData() error {
	data, err := os.ReadFile(s.dataFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read analytics file: %w", err)
	}

	var events []model.BrowseEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("failed to unmarshal analytics data: %w", err)
	}
	s.events = events
	return nil
}

// saveData writes events to the analytics file. Callers hold saveMu.
func (s *Service) saveData(events []model.BrowseEvent) error {
	if err := os.MkdirAll(filepath.Dir(s.dataFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create analytics directory: %w", err)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analytics data: %w", err)
	}

	if err := os.WriteFile(s.dataFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write analytics file: %w", err)
	}
	return nil
}
