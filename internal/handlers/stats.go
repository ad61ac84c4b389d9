package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/repository"
)

type StatsHandler struct {
	Repo repository.LogRepository
}

type statsResponse struct {
	*repository.FileStats
	// Human-readable forms of the byte totals, e.g. "5.9 MiB".
	TotalRequestSize  string `json:"total_request_size"`
	TotalResponseSize string `json:"total_response_size"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.GetStats(chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		FileStats:         stats,
		TotalRequestSize:  humanize.IBytes(uint64(stats.TotalRequestBytes)),
		TotalResponseSize: humanize.IBytes(uint64(stats.TotalResponseBytes)),
	})
}
