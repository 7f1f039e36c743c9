package services

import (
	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/internal/view"
	"github.com/learnflow/catalog/model"
)

// BrowseRequest is the query state a list page sends for one collection.
type BrowseRequest struct {
	Term     string            `json:"q"`
	Fields   []string          `json:"fields,omitempty"`  // Optional: subset of searchable fields; defaults to all of them
	Filters  map[string]string `json:"filters,omitempty"` // Exact, case-insensitive filters; keys must be filterable fields
	Sort     string            `json:"sort,omitempty"`    // none, rating, newest, popular; empty uses the collection default
	Page     int               `json:"page,omitempty"`
	PageSize int               `json:"page_size,omitempty"`
}

// BrowseResult is one page of a derived view.
type BrowseResult struct {
	Records  []model.Record `json:"records"`
	Featured []model.Record `json:"featured,omitempty"` // Featured records of the whole derived view, when the collection has a featured field
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Sort     view.SortKey   `json:"sort"`
	Took     int64          `json:"took"`     // milliseconds
	QueryID  string         `json:"query_id"` // unique UUID for this browse request
}

// RecordPage is one page of a collection's records in stored order.
type RecordPage struct {
	Records  []model.Record `json:"records"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// CollectionStats summarises a collection.
type CollectionStats struct {
	Name        string `json:"name"`
	RecordCount int    `json:"record_count"`
	Revision    uint64 `json:"revision"`
	MemoHits    uint64 `json:"memo_hits"`
	MemoMisses  uint64 `json:"memo_misses"`
}

// RecordWriter defines operations for changing the records of a collection
type RecordWriter interface {
	AddRecords(records []model.Record) error
	DeleteRecord(id string) error
	DeleteAllRecords() error
	RecordView(id string) (model.Record, error)
}

// RecordReader defines read access to stored records
type RecordReader interface {
	GetRecord(id string) (model.Record, error)
	ListRecords(page, pageSize int) RecordPage
}

// Browser derives filtered, ordered views of a collection
type Browser interface {
	Browse(req BrowseRequest) (BrowseResult, error)
	Facets(field string) ([]string, error)
}

// CollectionAccessor combines every per-collection operation
type CollectionAccessor interface {
	RecordWriter
	RecordReader
	Browser
	Settings() config.CollectionSettings
	Stats() CollectionStats
}

// CollectionManager manages the lifecycle of collections
type CollectionManager interface {
	CreateCollection(settings config.CollectionSettings) error
	GetCollection(name string) (CollectionAccessor, error)
	GetCollectionSettings(name string) (config.CollectionSettings, error)
	UpdateCollectionSettings(name string, settings config.CollectionSettings) error
	DeleteCollection(name string) error
	ListCollections() []string
	PersistCollection(name string) error
}
