package logparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xkura/sdklogview/internal/models"
)

// DefaultSyncMarker is the URI substring identifying long-polling sync
// requests when the caller does not configure one.
const DefaultSyncMarker = "/sync"

var (
	connIDRe = regexp.MustCompile(`conn_id="([^"]*)"`)
	// Attribute form: preceded by whitespace or line start, which keeps it
	// distinct from a timeout= query parameter inside the URI.
	timeoutAttrRe = regexp.MustCompile(`(?:^|\s)timeout=(\d+)`)
	timeoutURIRe  = regexp.MustCompile(`[?&]timeout=(\d+)`)
)

// SyncResult is the output of ParseSyncRequests.
type SyncResult struct {
	Requests      []models.SyncRequest `json:"requests"`
	ConnectionIDs []string             `json:"connection_ids"`
	Lines         []models.RawLogLine  `json:"raw_log_lines"`
}

// ParseSyncRequests runs a full parse pass and narrows the result to sync
// requests. It surfaces the same ParseError conditions as
// ParseAllHTTPRequests.
func ParseSyncRequests(fullText, marker string) (*SyncResult, error) {
	all, err := ParseAllHTTPRequests(fullText)
	if err != nil {
		return nil, err
	}
	requests, connIDs := DeriveSyncRequests(all.Requests, fullText, marker)
	return &SyncResult{Requests: requests, ConnectionIDs: connIDs, Lines: all.Lines}, nil
}

// DeriveSyncRequests keeps only the requests whose URI contains the sync
// marker and attaches a connection id and timeout scraped from the raw text.
// When several lines reference the same request id with different connection
// ids, the last one in file order wins. The timeout attribute near the sync
// span is preferred; a timeout= query parameter in the URI is the fallback.
// The returned connection ids are de-duplicated in first-seen order.
func DeriveSyncRequests(all []models.HTTPRequest, fullText, marker string) ([]models.SyncRequest, []string) {
	if marker == "" {
		marker = DefaultSyncMarker
	}

	// Only lines mentioning the marker can contribute conn_id or timeout.
	var candidates []string
	for _, raw := range strings.Split(fullText, "\n") {
		if strings.Contains(raw, marker) {
			candidates = append(candidates, raw)
		}
	}

	requests := make([]models.SyncRequest, 0)
	var connIDs []string
	seen := make(map[string]bool)

	for _, req := range all {
		if !strings.Contains(req.URI, marker) {
			continue
		}
		sr := models.SyncRequest{HTTPRequest: req}
		for _, raw := range candidates {
			if !strings.Contains(raw, req.RequestID) {
				continue
			}
			if m := connIDRe.FindStringSubmatch(raw); m != nil {
				sr.ConnID = m[1]
			}
			if m := timeoutAttrRe.FindStringSubmatch(raw); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					sr.TimeoutMs = &n
				}
			}
		}
		if sr.TimeoutMs == nil {
			if m := timeoutURIRe.FindStringSubmatch(req.URI); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					sr.TimeoutMs = &n
				}
			}
		}
		if sr.ConnID != "" && !seen[sr.ConnID] {
			seen[sr.ConnID] = true
			connIDs = append(connIDs, sr.ConnID)
		}
		requests = append(requests, sr)
	}
	return requests, connIDs
}
