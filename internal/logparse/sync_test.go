package logparse

import (
	"reflect"
	"strings"
	"testing"
)

const syncLog = `2024-01-15T09:12:44.228734Z  INFO sdk::http_client: send{request_id=REQ-10 method=POST uri=https://api.example.org/client/v3/sync?timeout=30000 request_size=1.1k}: Sending request
2024-01-15T09:12:44.300000Z DEBUG sdk::sync: span{conn_id="main" timeout=30000}: polling /sync for request_id=REQ-10
2024-01-15T09:12:45.100000Z  INFO sdk::http_client: send{request_id=REQ-10 method=POST uri=https://api.example.org/client/v3/sync?timeout=30000 request_size=1.1k status=200 response_size=8.2k request_duration=871.2ms}: Got response
2024-01-15T09:12:45.200000Z  INFO sdk::http_client: send{request_id=REQ-11 method=GET uri=https://api.example.org/client/v3/profile request_size=87B status=200 response_size=113B request_duration=42ms}: Got response
2024-01-15T09:12:45.300000Z  INFO sdk::http_client: send{request_id=REQ-12 method=POST uri=https://api.example.org/client/v3/sync?timeout=0 request_size=1.0k}: Sending request
2024-01-15T09:12:45.400000Z DEBUG sdk::sync: span{conn_id="catchup"}: polling /sync for request_id=REQ-12`

func TestDeriveSyncRequestsFiltersByMarker(t *testing.T) {
	res, err := ParseSyncRequests(syncLog, "/sync")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Requests) != 2 {
		t.Fatalf("expected 2 sync requests, got %d", len(res.Requests))
	}
	for _, r := range res.Requests {
		if !strings.Contains(r.URI, "/sync") {
			t.Errorf("non-sync request kept: %q", r.URI)
		}
	}
}

func TestSyncConnIDAndTimeout(t *testing.T) {
	res, err := ParseSyncRequests(syncLog, "/sync")
	if err != nil {
		t.Fatal(err)
	}
	byID := map[string]SyncByID{}
	for _, r := range res.Requests {
		byID[r.RequestID] = SyncByID{r.ConnID, r.TimeoutMs}
	}

	first := byID["REQ-10"]
	if first.ConnID != "main" {
		t.Errorf("expected conn_id main, got %q", first.ConnID)
	}
	if first.Timeout == nil || *first.Timeout != 30000 {
		t.Errorf("expected timeout 30000 from the attribute, got %v", first.Timeout)
	}

	// REQ-12 has no timeout attribute; the URI query parameter is the
	// fallback, and 0 is a valid catchup value distinct from absent.
	second := byID["REQ-12"]
	if second.ConnID != "catchup" {
		t.Errorf("expected conn_id catchup, got %q", second.ConnID)
	}
	if second.Timeout == nil || *second.Timeout != 0 {
		t.Errorf("expected timeout 0 (catchup), got %v", second.Timeout)
	}
}

type SyncByID struct {
	ConnID  string
	Timeout *int
}

func TestSyncConnIDLastScanWins(t *testing.T) {
	log := syncLog + "\n" + `2024-01-15T09:12:46.000000Z DEBUG sdk::sync: span{conn_id="renamed"}: polling /sync for request_id=REQ-10`
	res, err := ParseSyncRequests(log, "/sync")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Requests {
		if r.RequestID == "REQ-10" && r.ConnID != "renamed" {
			t.Errorf("later conn_id line must win, got %q", r.ConnID)
		}
	}
}

func TestSyncConnectionIDsFirstSeenOrder(t *testing.T) {
	res, err := ParseSyncRequests(syncLog, "/sync")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"main", "catchup"}
	if !reflect.DeepEqual(res.ConnectionIDs, want) {
		t.Errorf("expected connection ids %v, got %v", want, res.ConnectionIDs)
	}
}

func TestSyncTimeoutAbsent(t *testing.T) {
	log := `2024-01-15T09:12:44.228734Z  INFO sdk: send{request_id=REQ-20 method=POST uri=https://api.example.org/client/v3/sync request_size=1.1k}: Sending request`
	res, err := ParseSyncRequests(log, "/sync")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(res.Requests))
	}
	if res.Requests[0].TimeoutMs != nil {
		t.Errorf("absent timeout must stay nil, got %v", *res.Requests[0].TimeoutMs)
	}
}
