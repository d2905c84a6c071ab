package server

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"soundstage/core/engine"
	"soundstage/logger"
)

// ImportWatcher imports audio files dropped into a watched directory, so
// a user can feed the session from their file manager. Each file goes
// through the same per-file-failure-tolerant path as an upload.
type ImportWatcher struct {
	dir     string
	session *engine.Session
	hub     *Hub
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	handled map[string]time.Time
}

// NewImportWatcher sets up the directory (creating it if needed) and the
// fsnotify watch.
func NewImportWatcher(dir string, session *engine.Session, hub *Hub) (*ImportWatcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return &ImportWatcher{
		dir:     dir,
		session: session,
		hub:     hub,
		watcher: watcher,
		handled: make(map[string]time.Time),
	}, nil
}

// Run consumes watch events until Close.
func (iw *ImportWatcher) Run() {
	logger.Info("watching for audio files", logger.String("dir", iw.dir))
	for {
		select {
		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isAudioFile(event.Name) {
				continue
			}
			// Create and Write both fire for one dropped file; only
			// handle each path once per settle window.
			iw.mu.Lock()
			last, seen := iw.handled[event.Name]
			now := time.Now()
			if seen && now.Sub(last) < 2*time.Second {
				iw.mu.Unlock()
				continue
			}
			iw.handled[event.Name] = now
			iw.mu.Unlock()

			// Give the writer a moment to finish the file.
			go iw.importLater(event.Name)
		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("import watcher error", logger.ErrorField(err))
		}
	}
}

// Close stops the watch.
func (iw *ImportWatcher) Close() {
	iw.watcher.Close()
}

func (iw *ImportWatcher) importLater(path string) {
	time.Sleep(500 * time.Millisecond)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read dropped file failed",
			logger.String("file", path),
			logger.ErrorField(err))
		return
	}

	results := iw.session.ImportFiles([]engine.NamedBytes{{Name: filepath.Base(path), Data: data}})
	for _, res := range results {
		if res.Error != "" {
			logger.Warn("dropped file skipped",
				logger.String("file", res.Name),
				logger.String("reason", res.Error))
			continue
		}
		logger.Info("imported dropped file",
			logger.String("file", res.Name),
			logger.String("track", res.TrackID))
	}
	iw.hub.BroadcastState(iw.session.Snapshot())
}

func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3":
		return true
	}
	return false
}
