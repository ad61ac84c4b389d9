package repository

import (
	"time"

	"github.com/xkura/sdklogview/internal/models"
)

// RequestFilters narrows and orders a request query. SortBy is checked
// against a whitelist of column names by the implementation.
type RequestFilters struct {
	Method      string
	Status      string
	URIContains string
	Pending     *bool
	SortBy      string // send_line, response_line, duration_ms, uri, status, request_id
	SortDesc    bool
}

// LineFilters narrows a raw-line query.
type LineFilters struct {
	Level    string
	Contains string
}

// FileStats summarizes one parse pass for the dashboard.
type FileStats struct {
	LineCount          int64         `json:"line_count"`
	RequestCount       int64         `json:"request_count"`
	PendingCount       int64         `json:"pending_count"`
	ErrorRate          float64       `json:"error_rate"` // share of 4xx+5xx responses, percent
	LevelCounts        []LevelCount  `json:"level_counts"`
	StatusDistribution []StatusCount `json:"status_distribution"`
	TopURIs            []URICount    `json:"top_uris"`
	TotalRequestBytes  int64         `json:"total_request_bytes"`
	TotalResponseBytes int64         `json:"total_response_bytes"`
	AvgDurationMs      float64       `json:"avg_duration_ms"`
	MaxDurationMs      int64         `json:"max_duration_ms"`
}

type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type URICount struct {
	URI   string `json:"uri"`
	Count int64  `json:"count"`
}

// LogRepository stores complete parse passes. A pass is written atomically
// and its records are never mutated afterwards; re-ingesting a file produces
// a new pass and deletes the old one.
type LogRepository interface {
	SaveParse(file models.LogFile, lines []models.RawLogLine, requests []models.HTTPRequest, syncs []models.SyncRequest) error
	ListFiles() ([]models.LogFile, error)
	GetFile(id string) (*models.LogFile, error)
	DeleteFile(id string) error
	QueryRequests(fileID string, f RequestFilters, limit, offset int) ([]models.HTTPRequest, int, error)
	QuerySyncRequests(fileID string) ([]models.SyncRequest, []string, error)
	QueryLines(fileID string, f LineFilters, limit, offset int) ([]models.RawLogLine, int, error)
	GetStats(fileID string) (*FileStats, error)
	DeleteOlderThan(t time.Time) error
}
