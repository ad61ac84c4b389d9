package models

import "time"

// HTTPRequest is one logical request reconstructed from a send event and/or a
// response event sharing the same request id. String fields default to empty
// when the corresponding event was never observed; DurationMs is nil (not
// zero) while no response has been seen, so a genuine zero-duration response
// stays distinguishable from a pending one.
type HTTPRequest struct {
	RequestID string `json:"request_id"`
	Method    string `json:"method"`
	URI       string `json:"uri"`
	// Status is the response status code as a string; empty while pending.
	Status string `json:"status"`
	// RequestSize and ResponseSize keep the compact source notation
	// ("5.9k", "113B") for display; the decoded byte counts sit alongside.
	RequestSize   string `json:"request_size"`
	RequestBytes  int64  `json:"request_bytes"`
	ResponseSize  string `json:"response_size"`
	ResponseBytes int64  `json:"response_bytes"`
	DurationMs    *int64 `json:"duration_ms,omitempty"`
	// 1-based line numbers of the originating events, 0 if never observed.
	SendLineNumber     int `json:"send_line_number"`
	ResponseLineNumber int `json:"response_line_number"`
	// Microseconds since epoch of the originating events, 0 if unknown.
	SendTimestampMicros     int64 `json:"send_timestamp_micros"`
	ResponseTimestampMicros int64 `json:"response_timestamp_micros"`
}

// Pending reports whether no response event has been observed for the request.
func (r *HTTPRequest) Pending() bool { return r.ResponseLineNumber == 0 }

// SyncRequest is an HTTPRequest narrowed to the long-polling sync endpoint,
// with the connection id and timeout scraped from the surrounding log text.
// TimeoutMs nil means no timeout was found; 0 is a valid "catchup" value.
type SyncRequest struct {
	HTTPRequest
	ConnID    string `json:"conn_id"`
	TimeoutMs *int   `json:"timeout_ms,omitempty"`
}

// LogFile describes one ingested file, i.e. one complete parse pass. Records
// belonging to a file are replaced wholesale when the file is re-ingested.
type LogFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Source       string    `json:"source"` // "upload" or "watch"
	UploadedAt   time.Time `json:"uploaded_at"`
	LineCount    int       `json:"line_count"`
	RequestCount int       `json:"request_count"`
	SyncCount    int       `json:"sync_count"`
}
