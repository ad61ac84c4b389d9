package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/repository"
)

type SyncHandler struct {
	Repo repository.LogRepository
}

func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requests, connIDs, err := h.Repo.QuerySyncRequests(chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if requests == nil {
		requests = []models.SyncRequest{}
	}
	if connIDs == nil {
		connIDs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests":       requests,
		"connection_ids": connIDs,
	})
}
