package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/repository"
)

type ExportHandler struct {
	Repo repository.LogRepository
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	requests, _, err := h.Repo.QueryRequests(fileID, repository.RequestFilters{}, timelineMaxRecords, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	out, err := RequestsCSV(requests)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="requests-`+fileID+`.csv"`)
	_, _ = w.Write([]byte(out))
}

// RequestsCSV renders request records as delimited text. It is a plain
// function so callers decide how to deliver the payload.
func RequestsCSV(requests []models.HTTPRequest) (string, error) {
	var b strings.Builder
	cw := csv.NewWriter(&b)

	if err := cw.Write([]string{
		"request_id", "method", "uri", "status",
		"request_size", "request_bytes", "response_size", "response_bytes",
		"duration_ms", "send_line", "response_line",
	}); err != nil {
		return "", err
	}
	for _, q := range requests {
		duration := ""
		if q.DurationMs != nil {
			duration = strconv.FormatInt(*q.DurationMs, 10)
		}
		rec := []string{
			q.RequestID, q.Method, q.URI, q.Status,
			q.RequestSize, strconv.FormatInt(q.RequestBytes, 10),
			q.ResponseSize, strconv.FormatInt(q.ResponseBytes, 10),
			duration,
			strconv.Itoa(q.SendLineNumber), strconv.Itoa(q.ResponseLineNumber),
		}
		if err := cw.Write(rec); err != nil {
			return "", err
		}
	}
	cw.Flush()
	return b.String(), cw.Error()
}
