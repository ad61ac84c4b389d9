package ingest

import (
	"bufio"
	"compress/gzip"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xkura/sdklogview/internal/hub"
	"github.com/xkura/sdklogview/internal/logparse"
	"github.com/xkura/sdklogview/internal/models"
	"github.com/xkura/sdklogview/internal/observability"
	"github.com/xkura/sdklogview/internal/repository"
)

// Ingestor runs one full parse pass per input and stores the result. Hub and
// Metrics are optional; a nil value disables that side channel.
type Ingestor struct {
	Repo       repository.LogRepository
	Hub        *hub.Hub
	Metrics    *observability.Metrics
	Log        zerolog.Logger
	SyncMarker string
}

// Ingest reads a full log payload (plain text or gzip), parses it, and saves
// the pass under a fresh file id. A logparse.ParseError passes through to the
// caller so the HTTP layer can turn it into a client error.
func (ing *Ingestor) Ingest(r io.Reader, name, source string) (*models.LogFile, error) {
	start := time.Now()

	text, err := readMaybeGzip(r)
	if err != nil {
		return nil, err
	}

	res, err := logparse.ParseAllHTTPRequests(text)
	if err != nil {
		if logparse.IsParseError(err) && ing.Metrics != nil {
			ing.Metrics.ParseErrors.Inc()
		}
		return nil, err
	}
	syncs, _ := logparse.DeriveSyncRequests(res.Requests, text, ing.SyncMarker)

	file := models.LogFile{
		ID:           uuid.NewString(),
		Name:         name,
		Source:       source,
		UploadedAt:   time.Now().UTC(),
		LineCount:    len(res.Lines),
		RequestCount: len(res.Requests),
		SyncCount:    len(syncs),
	}
	if err := ing.Repo.SaveParse(file, res.Lines, res.Requests, syncs); err != nil {
		return nil, err
	}

	if ing.Metrics != nil {
		ing.Metrics.FilesIngested.WithLabelValues(source).Inc()
		ing.Metrics.RequestsParsed.Add(float64(len(res.Requests)))
		ing.Metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}
	if ing.Hub != nil {
		ing.Hub.Publish(hub.IngestEvent{
			FileID:   file.ID,
			Name:     file.Name,
			Source:   file.Source,
			Lines:    file.LineCount,
			Requests: file.RequestCount,
			Syncs:    file.SyncCount,
		})
	}
	ing.Log.Info().
		Str("file_id", file.ID).
		Str("name", name).
		Str("source", source).
		Int("lines", file.LineCount).
		Int("requests", file.RequestCount).
		Msg("ingested log file")
	return &file, nil
}

// readMaybeGzip drains the reader into a string, transparently decompressing
// when the payload starts with the gzip magic bytes.
func readMaybeGzip(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return "", err
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		return string(data), err
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
