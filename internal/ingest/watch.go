package ingest

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchPollInterval = 2 * time.Second

// WatchFile ingests path once, then re-ingests the whole file whenever it
// changes, replacing the previous pass. Parse results are never patched
// incrementally; each change produces a complete fresh pass. fsnotify drives
// the common case and a ticker catches writes the watcher misses.
func (ing *Ingestor) WatchFile(path string, stopCh <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	var lastSize int64 = -1
	var lastFileID string

	reingest := func() {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == lastSize {
			return
		}
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()

		file, err := ing.Ingest(f, filepath.Base(path), "watch")
		if err != nil {
			ing.Log.Warn().Err(err).Str("path", path).Msg("watch re-ingest failed")
			return
		}
		lastSize = info.Size()
		if lastFileID != "" {
			if err := ing.Repo.DeleteFile(lastFileID); err != nil {
				ing.Log.Warn().Err(err).Str("file_id", lastFileID).Msg("could not drop superseded pass")
			}
		}
		lastFileID = file.ID
	}

	reingest()

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				reingest()
			}
		case err := <-watcher.Errors:
			if err != nil {
				ing.Log.Warn().Err(err).Msg("fsnotify error")
			}
		case <-ticker.C:
			reingest()
		}
	}
}
