package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xkura/sdklogview/internal/config"
	"github.com/xkura/sdklogview/internal/csrf"
	"github.com/xkura/sdklogview/internal/handlers"
	"github.com/xkura/sdklogview/internal/hub"
	"github.com/xkura/sdklogview/internal/ingest"
	"github.com/xkura/sdklogview/internal/observability"
	"github.com/xkura/sdklogview/internal/repository"
)

func main() {
	log := observability.NewLogger("info")
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log = observability.NewLogger(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal().Err(err).Msg("mkdir")
	}

	repo, err := repository.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	defer repo.Close()

	metrics := observability.NewMetrics()
	events := hub.New()
	defer events.Close()

	ingestor := &ingest.Ingestor{
		Repo:       repo,
		Hub:        events,
		Metrics:    metrics,
		Log:        log,
		SyncMarker: cfg.SyncMarker,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(csrf.Protect)

	uh := &handlers.UploadHandler{Ingestor: ingestor, MaxBytes: cfg.MaxUploadMB << 20}
	fh := &handlers.FilesHandler{Repo: repo}
	qh := &handlers.RequestsHandler{Repo: repo}
	sh := &handlers.SyncHandler{Repo: repo}
	lh := &handlers.LinesHandler{Repo: repo}
	st := &handlers.StatsHandler{Repo: repo}
	tl := &handlers.TimelineHandler{Repo: repo, DefaultMsPerPixel: cfg.MsPerPixel}
	ex := &handlers.ExportHandler{Repo: repo}
	ws := &handlers.WSHandler{Hub: events, Log: log, Metrics: metrics}

	r.Post("/api/upload", uh.ServeHTTP)
	r.Get("/api/files", fh.List)
	r.Route("/api/files/{fileID}", func(r chi.Router) {
		r.Get("/", fh.Get)
		r.Delete("/", fh.Delete)
		r.Get("/requests", qh.ServeHTTP)
		r.Get("/requests.csv", ex.ServeHTTP)
		r.Get("/sync", sh.ServeHTTP)
		r.Get("/lines", lh.ServeHTTP)
		r.Get("/stats", st.ServeHTTP)
		r.Get("/timeline", tl.ServeHTTP)
	})
	r.Get("/ws", ws.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	// Retention job
	stopRetention := make(chan struct{})
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-stopRetention:
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-time.Duration(cfg.RetentionDays) * 24 * time.Hour)
				if err := repo.DeleteOlderThan(cutoff); err != nil {
					log.Error().Err(err).Msg("retention")
				} else {
					log.Info().Time("cutoff", cutoff).Msg("retention: deleted old parse passes")
				}
			}
		}
	}()

	// Local file watching
	if cfg.WatchPath != "" {
		stopWatch := make(chan struct{})
		go func() {
			if err := ingestor.WatchFile(cfg.WatchPath, stopWatch); err != nil {
				log.Error().Err(err).Str("path", cfg.WatchPath).Msg("watch")
			}
		}()
		defer close(stopWatch)
	}

	srv := &http.Server{Addr: cfg.Listen, Handler: r}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stopRetention)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("listen", cfg.Listen).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}
