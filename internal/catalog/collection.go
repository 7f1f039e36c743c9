package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/config"
	internalErrors "github.com/learnflow/catalog/internal/errors"
	"github.com/learnflow/catalog/internal/view"
	"github.com/learnflow/catalog/model"
	"github.com/learnflow/catalog/services"
	"github.com/learnflow/catalog/store"
)

// Collection holds the settings and records of one browse surface.
// It implements the services.CollectionAccessor interface.
type Collection struct {
	mu       sync.RWMutex
	settings config.CollectionSettings
	records  *store.RecordStore
	memo     *view.Memo
	opts     Options
	logger   *zap.Logger
	persist  func() error

	saveMu   sync.Mutex // serializes persist calls
	savedRev uint64     // last revision known to be on disk
}

func newCollection(settings config.CollectionSettings, records *store.RecordStore, opts Options, logger *zap.Logger, persist func() error) *Collection {
	return &Collection{
		settings: settings,
		records:  records,
		memo:     view.NewMemo(opts.MemoEntries),
		opts:     opts,
		logger:   logger,
		persist:  persist,
		savedRev: records.Revision(),
	}
}

// save persists the records unless their revision is already on disk.
// Saves run one at a time, so snapshots reach disk in revision order.
func (c *Collection) save() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	rev := c.records.Revision()
	if rev <= c.savedRev {
		return nil
	}
	if err := c.persist(); err != nil {
		return err
	}
	c.savedRev = rev
	return nil
}

// Settings returns a copy of the collection settings.
func (c *Collection) Settings() config.CollectionSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *Collection) setSettings(settings config.CollectionSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
}

// AddRecords inserts or replaces records and persists the collection.
func (c *Collection) AddRecords(records []model.Record) error {
	if len(records) == 0 {
		return internalErrors.NewValidationError("records", "no records provided")
	}
	if err := c.records.Put(records...); err != nil {
		return internalErrors.NewValidationError("records", err.Error())
	}
	c.logger.Debug("records stored", zap.Int("count", len(records)))
	return c.save()
}

// GetRecord returns a single record by id.
func (c *Collection) GetRecord(id string) (model.Record, error) {
	rec, ok := c.records.Get(id)
	if !ok {
		return nil, internalErrors.NewRecordNotFoundError(id, c.name())
	}
	return rec, nil
}

// DeleteRecord removes a record by id and persists the collection.
func (c *Collection) DeleteRecord(id string) error {
	if !c.records.Delete(id) {
		return internalErrors.NewRecordNotFoundError(id, c.name())
	}
	return c.save()
}

// DeleteAllRecords empties the collection and persists it.
func (c *Collection) DeleteAllRecords() error {
	c.records.DeleteAll()
	return c.save()
}

// RecordView counts one open of a record against its view counter field.
func (c *Collection) RecordView(id string) (model.Record, error) {
	field := c.Settings().ViewCountField
	rec, ok := c.records.Increment(id, field)
	if !ok {
		return nil, internalErrors.NewRecordNotFoundError(id, c.name())
	}
	if err := c.save(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecords pages through records in stored order.
func (c *Collection) ListRecords(page, pageSize int) services.RecordPage {
	page, pageSize = c.normalizePaging(page, pageSize)
	snapshot, _ := c.records.Snapshot()
	return services.RecordPage{
		Records:  paginate(snapshot, page, pageSize),
		Total:    len(snapshot),
		Page:     page,
		PageSize: pageSize,
	}
}

// Browse derives the filtered, ordered view requested by a list page.
func (c *Collection) Browse(req services.BrowseRequest) (services.BrowseResult, error) {
	start := time.Now()
	settings := c.Settings()

	q, err := c.buildQuery(settings, req)
	if err != nil {
		return services.BrowseResult{}, err
	}

	snapshot, revision := c.records.Snapshot()
	derived := c.memo.Derive(revision, snapshot, q)

	var featured []model.Record
	if settings.FeaturedField != "" {
		featured, derived = splitFeatured(derived, settings.FeaturedField)
	}

	page, pageSize := c.normalizePaging(req.Page, req.PageSize)
	return services.BrowseResult{
		Records:  paginate(derived, page, pageSize),
		Featured: featured,
		Total:    len(derived),
		Page:     page,
		PageSize: pageSize,
		Sort:     q.Sort,
		Took:     time.Since(start).Milliseconds(),
		QueryID:  uuid.New().String(),
	}, nil
}

// buildQuery checks the request against the collection settings and turns it into a view query.
func (c *Collection) buildQuery(settings config.CollectionSettings, req services.BrowseRequest) (view.Query, error) {
	fields := settings.SearchableFields
	if len(req.Fields) > 0 {
		for _, field := range req.Fields {
			if !settings.IsSearchable(field) {
				return view.Query{}, internalErrors.NewValidationError("fields",
					fmt.Sprintf("field '%s' is not a searchable field of collection '%s'", field, settings.Name))
			}
		}
		fields = req.Fields
	}

	filters := make(map[string]string, len(req.Filters))
	for field, want := range req.Filters {
		if !settings.IsFilterable(field) {
			return view.Query{}, internalErrors.NewValidationError("filters."+field,
				fmt.Sprintf("field '%s' is not a filterable field of collection '%s'", field, settings.Name))
		}
		filters[field] = want
	}

	sortKey := settings.DefaultSort
	if strings.TrimSpace(req.Sort) != "" {
		sortKey = view.ParseSortKey(req.Sort)
	}
	if !sortKey.Known() {
		c.logger.Warn("unknown sort key, keeping filtered order", zap.String("sort", string(sortKey)))
	}

	return view.Query{
		Term:    req.Term,
		Fields:  fields,
		Filters: filters,
		Sort:    sortKey,
		Ranking: settings.Ranking(),
	}, nil
}

// Facets returns the sorted distinct values of a filterable field, for filter dropdowns.
func (c *Collection) Facets(field string) ([]string, error) {
	settings := c.Settings()
	if !settings.IsFilterable(field) {
		return nil, internalErrors.NewValidationError("field",
			fmt.Sprintf("field '%s' is not a filterable field of collection '%s'", field, settings.Name))
	}

	snapshot, _ := c.records.Snapshot()
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, rec := range snapshot {
		for _, v := range view.FieldValues(rec, field) {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}

// Stats reports record count, revision and memo usage.
func (c *Collection) Stats() services.CollectionStats {
	hits, misses := c.memo.Stats()
	return services.CollectionStats{
		Name:        c.name(),
		RecordCount: c.records.Len(),
		Revision:    c.records.Revision(),
		MemoHits:    hits,
		MemoMisses:  misses,
	}
}

func (c *Collection) name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Name
}

func (c *Collection) normalizePaging(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = c.opts.DefaultPageSize
	}
	if pageSize > c.opts.MaxPageSize {
		pageSize = c.opts.MaxPageSize
	}
	return page, pageSize
}

// paginate expects page >= 1 and pageSize >= 1. Pages past the end are empty; the
// bound is checked before multiplying so huge page numbers cannot overflow.
func paginate(records []model.Record, page, pageSize int) []model.Record {
	pages := (len(records) + pageSize - 1) / pageSize
	if page-1 >= pages {
		return []model.Record{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// splitFeatured separates featured records, keeping the derived order in both halves.
func splitFeatured(records []model.Record, field string) (featured, regular []model.Record) {
	featured = make([]model.Record, 0)
	regular = make([]model.Record, 0, len(records))
	for _, rec := range records {
		if isTruthy(rec[field]) {
			featured = append(featured, rec)
		} else {
			regular = append(regular, rec)
		}
	}
	return featured, regular
}

func isTruthy(val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}
