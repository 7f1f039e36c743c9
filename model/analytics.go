package model

import "time"

// BrowseEvent represents a single derived-view request for analytics tracking
type BrowseEvent struct {
	Collection   string        `json:"collection"`
	Term         string        `json:"term"`
	Sort         string        `json:"sort"`
	FilterCount  int           `json:"filter_count"`
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularTerm represents aggregated data for a free-text term
type PopularTerm struct {
	Term        string `json:"term"`
	BrowseCount int    `json:"browse_count"`
}

// CollectionStats represents browse statistics for one collection
type CollectionStats struct {
	Collection  string `json:"collection"`
	RecordCount int    `json:"record_count"`
	BrowseCount int    `json:"browse_count"`
}

// SortUsage counts how often each sort strategy was requested
type SortUsage struct {
	None    int `json:"none"`
	Rating  int `json:"rating"`
	Newest  int `json:"newest"`
	Popular int `json:"popular"`
	Unknown int `json:"unknown"`
}

// AnalyticsDashboard represents the complete analytics view
type AnalyticsDashboard struct {
	TotalBrowses        int               `json:"total_browses"`
	BrowsesLast24h      int               `json:"browses_last_24h"`
	BrowsesLast7d       int               `json:"browses_last_7d"`
	AvgResponseTimeMs   float64           `json:"avg_response_time_ms"`
	FilteredBrowseRatio float64           `json:"filtered_browse_ratio"`
	TopTerms            []PopularTerm     `json:"top_terms"`
	ZeroResultTerms     []PopularTerm     `json:"zero_result_terms"`
	Collections         []CollectionStats `json:"collections"`
	Sorts               SortUsage         `json:"sorts"`
	GeneratedAt         time.Time         `json:"generated_at"`
}
