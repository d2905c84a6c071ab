package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"soundstage/config"
	"soundstage/core/engine"
	"soundstage/core/synth"
	"soundstage/logger"
)

// Start initializes the editing session and runs the HTTP server until
// interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
	})

	session := engine.NewSession(cfg.ProjectName, cfg.SampleRate, engine.NewClock(), synth.NewEngine(cfg.SampleRate))
	hub := NewHub(session, time.Duration(cfg.TickInterval)*time.Millisecond)
	apiHandler := NewAPIHandler(session, hub, cfg)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      newRouter(apiHandler, hub, cfg),
	}

	go hub.Run()

	if cfg.ImportWatchDir != "" {
		watcher, err := NewImportWatcher(cfg.ImportWatchDir, session, hub)
		if err != nil {
			logger.Warn("import watcher disabled", logger.ErrorField(err))
		} else {
			go watcher.Run()
			defer watcher.Close()
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session.Pause()
	hub.Close()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// newRouter wires the API routes, the websocket endpoint and the static UI
// file server behind the CORS middleware.
func newRouter(apiHandler *APIHandler, hub *Hub, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	// CORS middleware; the browser UI is usually served from a dev server
	// on another port.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Session state and import
	router.HandleFunc("/api/session", apiHandler.SessionHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/import", apiHandler.ImportHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/ruler", apiHandler.RulerHandler).Methods(http.MethodGet)

	// Transport
	router.HandleFunc("/api/transport/play", apiHandler.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/transport/pause", apiHandler.PauseHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/transport/seek", apiHandler.SeekHandler).Methods(http.MethodPost)

	// Tracks
	router.HandleFunc("/api/tracks/{id}/clips", apiHandler.CreateClipHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/position", apiHandler.MoveTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/depth", apiHandler.TrackDepthHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", apiHandler.UpdateTrackHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/tracks/{id}", apiHandler.DeleteTrackHandler).Methods(http.MethodDelete)

	// Clips
	router.HandleFunc("/api/clips/{id}", apiHandler.UpdateClipHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/clips/{id}", apiHandler.DeleteClipHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/clips/{id}/select", apiHandler.SelectClipHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/clips/{id}/slice", apiHandler.SliceClipHandler).Methods(http.MethodPost)

	// Clipboard, mode, export
	router.HandleFunc("/api/clipboard/copy", apiHandler.CopyHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/clipboard/paste", apiHandler.PasteHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/mode", apiHandler.ModeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/export", apiHandler.ExportHandler).Methods(http.MethodPost)

	// Transport/state push
	router.HandleFunc("/ws", hub.ServeWS)

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	return router
}
