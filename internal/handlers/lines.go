package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/repository"
)

type LinesHandler struct {
	Repo repository.LogRepository
}

func (h *LinesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	filters := repository.LineFilters{
		Level:    r.URL.Query().Get("level"),
		Contains: r.URL.Query().Get("q"),
	}
	limit, offset := pageParams(r)

	lines, total, err := h.Repo.QueryLines(fileID, filters, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if lines == nil {
		lines = []models.RawLogLine{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lines":  lines,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
