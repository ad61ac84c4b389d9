package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/repository"
	"github.com/xkura/sdklogview/internal/timeline"
)

const (
	defaultContainerPx = 960
	timelineMaxRecords = 100000
)

type TimelineHandler struct {
	Repo              repository.LogRepository
	DefaultMsPerPixel float64
}

type timelineBar struct {
	RequestID string  `json:"request_id"`
	Method    string  `json:"method"`
	URI       string  `json:"uri"`
	Status    string  `json:"status"`
	Pending   bool    `json:"pending"`
	SendLine  int     `json:"send_line"`
	OffsetPx  float64 `json:"offset_px"`
	WidthPx   float64 `json:"width_px"`
}

type timelineResponse struct {
	WidthPx    float64       `json:"width_px"`
	MinTsMs    float64       `json:"min_ts_ms"`
	MaxTsMs    float64       `json:"max_ts_ms"`
	MsPerPixel float64       `json:"ms_per_pixel"`
	Bars       []timelineBar `json:"bars"`
}

func (h *TimelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	requests, _, err := h.Repo.QueryRequests(fileID, repository.RequestFilters{}, timelineMaxRecords, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}

	containerPx := floatParam(r, "width", defaultContainerPx)
	msPerPixel := floatParam(r, "ms_per_pixel", h.DefaultMsPerPixel)
	if msPerPixel <= 0 {
		msPerPixel = timeline.DefaultMsPerPixel
	}

	resp := buildTimeline(requests, containerPx, msPerPixel)
	writeJSON(w, http.StatusOK, resp)
}

// buildTimeline computes waterfall geometry for every request that carries a
// usable timestamp. Requests with neither a send nor a response timestamp
// cannot be placed and are left out.
func buildTimeline(requests []models.HTTPRequest, containerPx, msPerPixel float64) timelineResponse {
	type placed struct {
		req   models.HTTPRequest
		start float64
		dur   float64 // 0 when pending
	}

	var events []placed
	minTs, maxTs := 0.0, 0.0
	for _, q := range requests {
		start, ok := startMillis(q)
		if !ok {
			continue
		}
		var dur float64
		if q.DurationMs != nil {
			dur = float64(*q.DurationMs)
		}
		end := start + dur
		if len(events) == 0 || start < minTs {
			minTs = start
		}
		if len(events) == 0 || end > maxTs {
			maxTs = end
		}
		events = append(events, placed{req: q, start: start, dur: dur})
	}

	widthPx := timeline.Width(containerPx, minTs, maxTs, msPerPixel)
	total := maxTs - minTs

	bars := make([]timelineBar, 0, len(events))
	for _, e := range events {
		bars = append(bars, timelineBar{
			RequestID: e.req.RequestID,
			Method:    e.req.Method,
			URI:       e.req.URI,
			Status:    e.req.Status,
			Pending:   e.req.Pending(),
			SendLine:  e.req.SendLineNumber,
			OffsetPx:  timeline.Position(e.start, minTs, total, widthPx, msPerPixel),
			WidthPx:   timeline.BarWidth(e.dur, total, widthPx, msPerPixel),
		})
	}
	return timelineResponse{
		WidthPx:    widthPx,
		MinTsMs:    minTs,
		MaxTsMs:    maxTs,
		MsPerPixel: msPerPixel,
		Bars:       bars,
	}
}

// startMillis picks the bar's start time: the send timestamp when observed,
// otherwise the response timestamp minus the duration.
func startMillis(q models.HTTPRequest) (float64, bool) {
	if q.SendTimestampMicros > 0 {
		return float64(q.SendTimestampMicros) / 1000, true
	}
	if q.ResponseTimestampMicros > 0 {
		ms := float64(q.ResponseTimestampMicros) / 1000
		if q.DurationMs != nil {
			ms -= float64(*q.DurationMs)
		}
		return ms, true
	}
	return 0, false
}

func floatParam(r *http.Request, name string, def float64) float64 {
	if v := r.URL.Query().Get(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
