package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/repository"
)

type FilesHandler struct {
	Repo repository.LogRepository
}

func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.Repo.ListFiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if files == nil {
		files = []models.LogFile{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.Repo.GetFile(chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "not_found", "no such file")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteFile(chi.URLParam(r, "fileID")); err != nil {
		writeError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
