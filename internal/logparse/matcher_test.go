package logparse

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const (
	sendLine = `2024-01-15T09:12:44.228734Z  INFO sdk::http_client: send{request_id=REQ-1 method=POST uri=https://api.example.org/client/v3/login request_size=113B}: Sending request`
	respLine = `2024-01-15T09:12:44.588732Z  INFO sdk::http_client: send{request_id=REQ-1 method=POST uri=https://api.example.org/client/v3/login request_size=113B status=200 response_size=5.9k request_duration=359.998542ms}: Got response`
)

func TestParseEndToEnd(t *testing.T) {
	res, err := ParseAllHTTPRequests(sendLine + "\n" + respLine + "\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Requests) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Requests))
	}
	r := res.Requests[0]
	if r.RequestID != "REQ-1" {
		t.Errorf("expected REQ-1, got %q", r.RequestID)
	}
	if r.Status != "200" {
		t.Errorf("expected status 200, got %q", r.Status)
	}
	if r.DurationMs == nil || *r.DurationMs != 360 {
		t.Errorf("expected 360ms duration, got %v", r.DurationMs)
	}
	if r.SendLineNumber != 1 || r.ResponseLineNumber != 2 {
		t.Errorf("expected lines 1/2, got %d/%d", r.SendLineNumber, r.ResponseLineNumber)
	}
	if r.RequestBytes != 113 {
		t.Errorf("expected 113 request bytes, got %d", r.RequestBytes)
	}
	if r.ResponseBytes != 6042 {
		t.Errorf("expected 6042 response bytes, got %d", r.ResponseBytes)
	}
	if r.ResponseSize != "5.9k" {
		t.Errorf("raw size string must be retained, got %q", r.ResponseSize)
	}
}

func TestResponseLineIsNotAlsoASend(t *testing.T) {
	res, err := ParseAllHTTPRequests(respLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Requests) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Requests))
	}
	r := res.Requests[0]
	if r.SendLineNumber != 0 {
		t.Errorf("a lone response line must not set the send line, got %d", r.SendLineNumber)
	}
	if r.ResponseLineNumber != 1 {
		t.Errorf("expected response line 1, got %d", r.ResponseLineNumber)
	}
}

func TestMergeOrderIndependence(t *testing.T) {
	forward, err := ParseAllHTTPRequests(sendLine + "\n" + respLine)
	if err != nil {
		t.Fatal(err)
	}
	reversed, err := ParseAllHTTPRequests(respLine + "\n" + sendLine)
	if err != nil {
		t.Fatal(err)
	}
	if len(forward.Requests) != 1 || len(reversed.Requests) != 1 {
		t.Fatalf("expected one record in both orders, got %d and %d",
			len(forward.Requests), len(reversed.Requests))
	}
	f, r := forward.Requests[0], reversed.Requests[0]
	if f.RequestID != r.RequestID || f.Status != r.Status {
		t.Errorf("merge must not depend on file order: %+v vs %+v", f, r)
	}
	// Line numbers track whichever line held each event.
	if r.ResponseLineNumber != 1 || r.SendLineNumber != 2 {
		t.Errorf("reversed order: expected response line 1 and send line 2, got %d/%d",
			r.ResponseLineNumber, r.SendLineNumber)
	}
}

func TestDuplicateSendLastLineWins(t *testing.T) {
	text := sendLine + "\n" + sendLine
	res, err := ParseAllHTTPRequests(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Requests) != 1 {
		t.Fatalf("expected one record for a retransmitted send, got %d", len(res.Requests))
	}
	if res.Requests[0].SendLineNumber != 2 {
		t.Errorf("expected the later send line 2, got %d", res.Requests[0].SendLineNumber)
	}
}

func TestDuplicateResponseFirstWins(t *testing.T) {
	second := strings.Replace(respLine, "status=200", "status=500", 1)
	res, err := ParseAllHTTPRequests(respLine + "\n" + second)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Requests) != 1 {
		t.Fatalf("expected one record, got %d", len(res.Requests))
	}
	if res.Requests[0].Status != "200" {
		t.Errorf("a second response must not overwrite the first, got status %q", res.Requests[0].Status)
	}
}

func TestBlankLinesKeepNumbering(t *testing.T) {
	text := "\n\n" + sendLine + "\n\n" + respLine
	res, err := ParseAllHTTPRequests(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 2 {
		t.Fatalf("blank lines must not be retained, got %d lines", len(res.Lines))
	}
	if res.Lines[0].LineNumber != 3 || res.Lines[1].LineNumber != 5 {
		t.Errorf("line numbers must count blank lines: got %d and %d",
			res.Lines[0].LineNumber, res.Lines[1].LineNumber)
	}
	r := res.Requests[0]
	if r.SendLineNumber != 3 || r.ResponseLineNumber != 5 {
		t.Errorf("expected send/response lines 3/5, got %d/%d", r.SendLineNumber, r.ResponseLineNumber)
	}
}

func TestTruncatedBlockIsSkipped(t *testing.T) {
	truncated := `2024-01-15T09:12:44.228734Z  INFO sdk: send{request_id=REQ-9 method=GET uri=https://api.example.org/x request_size=`
	res, err := ParseAllHTTPRequests(sendLine + "\n" + truncated)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Requests {
		if r.RequestID == "REQ-9" {
			t.Errorf("truncated block must not produce a record: %+v", r)
		}
	}
}

func TestParseErrorOnEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t\n  "} {
		_, err := ParseAllHTTPRequests(input)
		if !IsParseError(err) {
			t.Errorf("input %q: expected ParseError, got %v", input, err)
		}
	}
}

func TestParseErrorOnTimestampRatio(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, "plain line %d\n", i)
	}
	if _, err := ParseAllHTTPRequests(b.String()); !IsParseError(err) {
		t.Fatalf("150 untimestamped lines: expected ParseError, got %v", err)
	}

	// The same lines with 17 timestamped lines interspersed clear the 10% bar.
	for i := 0; i < 17; i++ {
		fmt.Fprintf(&b, "2024-01-15T09:12:%02d.000000Z INFO sdk: heartbeat\n", i)
	}
	if _, err := ParseAllHTTPRequests(b.String()); err != nil {
		t.Fatalf("expected mixed input to parse, got %v", err)
	}
}

func TestParseIdempotent(t *testing.T) {
	text := sendLine + "\n" + respLine + "\nnoise ERROR free text\n" + sendLine
	first, err := ParseAllHTTPRequests(text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseAllHTTPRequests(text)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Lines, second.Lines) {
		t.Error("repeated parses must yield identical lines")
	}
	if len(first.Requests) != len(second.Requests) {
		t.Fatalf("request counts differ: %d vs %d", len(first.Requests), len(second.Requests))
	}
	for i := range first.Requests {
		a, b := first.Requests[i], second.Requests[i]
		if a.RequestID != b.RequestID || a.SendLineNumber != b.SendLineNumber {
			t.Errorf("record %d differs across parses: %+v vs %+v", i, a, b)
		}
	}
}

func TestOutputOrdering(t *testing.T) {
	// REQ-A: response only (no send observed). REQ-B and REQ-C: complete,
	// with REQ-C's send earlier in the file than REQ-B's.
	respOnly := strings.Replace(respLine, "REQ-1", "REQ-A", 1)
	sendC := strings.Replace(sendLine, "REQ-1", "REQ-C", 1)
	sendB := strings.Replace(sendLine, "REQ-1", "REQ-B", 1)
	text := respOnly + "\n" + sendC + "\n" + sendB

	res, err := ParseAllHTTPRequests(text)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range res.Requests {
		ids = append(ids, r.RequestID)
	}
	// Records without a send line sort first in discovery order; the rest
	// ascend by send line number.
	want := []string{"REQ-A", "REQ-C", "REQ-B"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected order %v, got %v", want, ids)
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"113B", 113, true},
		{"5.9k", 6042, true},
		{"1.2M", 1258291, true},
		{"2G", 2147483648, true},
		{"5.9K", 0, false}, // suffixes are case-sensitive
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseSize(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseSize(%q) = %d,%v; want %d,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseDurationMs(t *testing.T) {
	cases := []struct {
		value, unit string
		want        int64
	}{
		{"359.998542", "ms", 360},
		{"0.5", "ms", 1},
		{"100.5", "ms", 101},
		{"2.5", "s", 2500},
		{"0.0001", "ms", 1}, // positive sub-millisecond values report 1ms
		{"0", "ms", 0},
	}
	for _, c := range cases {
		got, ok := ParseDurationMs(c.value, c.unit)
		if !ok || got != c.want {
			t.Errorf("ParseDurationMs(%q, %q) = %d,%v; want %d", c.value, c.unit, got, ok, c.want)
		}
	}
}
