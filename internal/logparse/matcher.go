package logparse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xkura/sdklogview/internal/models"
)

// Cheap substring pre-filter: a line can only describe an HTTP event if it
// carries both markers. The structured regexes below are only attempted on
// lines that pass this check.
const (
	sendMarker      = "send{"
	requestIDMarker = "request_id="
)

var (
	// A response line carries the full send block plus the response-only
	// fields status, response_size and request_duration.
	responseRe = regexp.MustCompile(
		`send\{request_id=(?P<request_id>[^\s}]+) method=(?P<method>[^\s}]+) uri=(?P<uri>[^\s}]+) request_size=(?P<request_size>[^\s}]+) status=(?P<status>\d+) response_size=(?P<response_size>[^\s}]+) request_duration=(?P<duration>\d+(?:\.\d+)?)(?P<unit>ms|s)\}`)

	// A send line is the same block closed directly after request_size. RE2
	// has no negative lookahead, so the "must not also carry response fields"
	// constraint is enforced separately in scanLine.
	sendRe = regexp.MustCompile(
		`send\{request_id=(?P<request_id>[^\s}]+) method=(?P<method>[^\s}]+) uri=(?P<uri>[^\s}]+) request_size=(?P<request_size>[^\s}]+)\}`)
)

// ParseResult is the full output of one parse pass over a log file.
type ParseResult struct {
	Requests []models.HTTPRequest `json:"http_requests"`
	Lines    []models.RawLogLine  `json:"raw_log_lines"`
}

// ParseAllHTTPRequests splits fullText into lines, classifies every non-empty
// line, and merges send/response events into HTTPRequest records keyed by
// request id. It returns a ParseError when the input is empty or when fewer
// than roughly 10% of the non-empty lines carry a recognizable timestamp;
// individual malformed lines are skipped silently.
func ParseAllHTTPRequests(fullText string) (*ParseResult, error) {
	if strings.TrimSpace(fullText) == "" {
		return nil, &ParseError{Reason: "input is empty"}
	}

	rawLines := strings.Split(fullText, "\n")
	lines := make([]models.RawLogLine, 0, len(rawLines))
	acc := newAccumulator()
	timestamped := 0

	for i, raw := range rawLines {
		if strings.TrimSpace(raw) == "" {
			// Blank lines keep their position for numbering but are not retained.
			continue
		}
		rec := Classify(raw, i+1)
		if rec.TimestampMicros != 0 {
			timestamped++
		}
		lines = append(lines, rec)

		if strings.Contains(raw, sendMarker) && strings.Contains(raw, requestIDMarker) {
			acc.scanLine(raw, rec)
		}
	}

	if timestamped*10 < len(lines) {
		return nil, &ParseError{Reason: fmt.Sprintf(
			"only %d of %d lines carry a recognizable timestamp; not an SDK debug log", timestamped, len(lines))}
	}

	return &ParseResult{Requests: acc.records(), Lines: lines}, nil
}

// accumulator merges send and response events into one record per request id.
// Most fields are first-write-wins; SendLineNumber is last-write-wins so a
// retransmitted send moves the record to its latest send line.
type accumulator struct {
	byID  map[string]*models.HTTPRequest
	order []string // request ids in discovery order
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[string]*models.HTTPRequest)}
}

func (a *accumulator) get(id string) *models.HTTPRequest {
	if rec, ok := a.byID[id]; ok {
		return rec
	}
	rec := &models.HTTPRequest{RequestID: id}
	a.byID[id] = rec
	a.order = append(a.order, id)
	return rec
}

func (a *accumulator) scanLine(raw string, line models.RawLogLine) {
	if m := matchNamed(responseRe, raw); m != nil {
		a.applyResponse(m, line)
		return
	}
	m := matchNamed(sendRe, raw)
	if m == nil {
		return
	}
	// A line that looks like a send but still mentions a response-only field
	// is a cut-off response fragment; skip it rather than double-count.
	if strings.Contains(raw, "request_duration=") || strings.Contains(raw, "response_size=") {
		return
	}
	a.applySend(m, line)
}

func (a *accumulator) applySend(m map[string]string, line models.RawLogLine) {
	rec := a.get(m["request_id"])
	setIfEmpty(&rec.Method, m["method"])
	setIfEmpty(&rec.URI, m["uri"])
	a.setRequestSize(rec, m["request_size"])
	rec.SendLineNumber = line.LineNumber
	rec.SendTimestampMicros = line.TimestampMicros
}

func (a *accumulator) applyResponse(m map[string]string, line models.RawLogLine) {
	rec := a.get(m["request_id"])
	setIfEmpty(&rec.Method, m["method"])
	setIfEmpty(&rec.URI, m["uri"])
	a.setRequestSize(rec, m["request_size"])

	// Response-only fields are set exactly once per id; a duplicate response
	// for the same request does not overwrite the first one.
	if rec.ResponseLineNumber != 0 {
		return
	}
	rec.Status = m["status"]
	rec.ResponseSize = m["response_size"]
	if n, ok := ParseSize(m["response_size"]); ok {
		rec.ResponseBytes = n
	}
	if ms, ok := ParseDurationMs(m["duration"], m["unit"]); ok {
		rec.DurationMs = &ms
	}
	rec.ResponseLineNumber = line.LineNumber
	rec.ResponseTimestampMicros = line.TimestampMicros
}

func (a *accumulator) setRequestSize(rec *models.HTTPRequest, raw string) {
	if rec.RequestSize != "" {
		return
	}
	rec.RequestSize = raw
	if n, ok := ParseSize(raw); ok {
		rec.RequestBytes = n
	}
}

// records returns the merged requests in presentation order: stable sort by
// SendLineNumber ascending. Response-only records (SendLineNumber 0) sort
// first and keep their discovery order, which for them equals the order of
// their response lines in the file.
func (a *accumulator) records() []models.HTTPRequest {
	out := make([]models.HTTPRequest, 0, len(a.order))
	for _, id := range a.order {
		rec := a.byID[id]
		if rec.URI == "" {
			continue
		}
		if rec.SendLineNumber == 0 && rec.ResponseLineNumber == 0 {
			continue
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SendLineNumber < out[j].SendLineNumber
	})
	return out
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// matchNamed runs re against s and returns the named capture groups, or nil
// when the pattern does not match.
func matchNamed(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}
