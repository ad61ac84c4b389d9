package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/repository"
)

type RequestsHandler struct {
	Repo repository.LogRepository
}

func (h *RequestsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	filters := parseRequestFilters(r)
	limit, offset := pageParams(r)

	requests, total, err := h.Repo.QueryRequests(fileID, filters, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if requests == nil {
		requests = []models.HTTPRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func parseRequestFilters(r *http.Request) repository.RequestFilters {
	q := r.URL.Query()
	f := repository.RequestFilters{
		Method:      q.Get("method"),
		Status:      q.Get("status"),
		URIContains: q.Get("uri"),
		SortBy:      q.Get("sort"),
		SortDesc:    q.Get("order") == "desc",
	}
	switch q.Get("pending") {
	case "true":
		v := true
		f.Pending = &v
	case "false":
		v := false
		f.Pending = &v
	}
	return f
}
