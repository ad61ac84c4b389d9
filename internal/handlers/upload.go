package handlers

import (
	"io"
	"net/http"

	"github.com/xkura/sdklogview/internal/logparse"
	"github.com/xkura/sdklogview/internal/models"
)

// Ingestor is the slice of the ingest pipeline the upload handler needs.
type Ingestor interface {
	Ingest(r io.Reader, name, source string) (*models.LogFile, error)
}

type UploadHandler struct {
	Ingestor Ingestor
	MaxBytes int64
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	file, header, err := r.FormFile("logfile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_upload", "no file uploaded or invalid form: "+err.Error())
		return
	}
	defer file.Close()

	lf, err := h.Ingestor.Ingest(file, header.Filename, "upload")
	if err != nil {
		if logparse.IsParseError(err) {
			writeError(w, http.StatusUnprocessableEntity, "unsupported_log", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, lf)
}
