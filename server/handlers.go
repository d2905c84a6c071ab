package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"soundstage/config"
	"soundstage/core/audio"
	"soundstage/core/engine"
	"soundstage/core/utils"
	"soundstage/logger"
	"soundstage/model"
)

// APIHandler serves the editor API.
type APIHandler struct {
	session *engine.Session
	hub     *Hub
	cfg     *config.Config
}

// NewAPIHandler creates the handler set around one session.
func NewAPIHandler(session *engine.Session, hub *Hub, cfg *config.Config) *APIHandler {
	return &APIHandler{session: session, hub: hub, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response failed", logger.ErrorField(err))
	}
}

// writeError maps engine errors onto HTTP statuses: unknown ids are 404,
// rejected edits 422, an export already in flight 409, the rest 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidEdit), errors.Is(err, engine.ErrEmptyTimeline):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrExportInFlight):
		status = http.StatusConflict
	case errors.Is(err, audio.ErrDecode):
		status = http.StatusUnsupportedMediaType
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// broadcastState pushes the fresh snapshot to every websocket client
// after a mutation.
func (h *APIHandler) broadcastState() {
	h.hub.BroadcastState(h.session.Snapshot())
}

// SessionHandler returns the full read-only editor state.
func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// ImportHandler accepts a multipart batch of audio files. Each file is
// decoded independently; a corrupt file is reported in its result entry
// and does not abort the batch.
func (h *APIHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadMB << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("parse multipart form: %v", err)})
		return
	}

	var files []engine.NamedBytes
	for _, headers := range r.MultipartForm.File {
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				logger.Warn("open upload failed",
					logger.String("file", hdr.Filename),
					logger.ErrorField(err))
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				logger.Warn("read upload failed",
					logger.String("file", hdr.Filename),
					logger.ErrorField(err))
				continue
			}
			files = append(files, engine.NamedBytes{Name: hdr.Filename, Data: data})
		}
	}
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files in form"})
		return
	}

	results := h.session.ImportFiles(files)
	h.broadcastState()
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// RulerHandler computes timeline ruler ticks for the UI's current zoom.
// Query: pps (pixels per second), spacing (min label spacing in px).
func (h *APIHandler) RulerHandler(w http.ResponseWriter, r *http.Request) {
	pps, _ := strconv.ParseFloat(r.URL.Query().Get("pps"), 64)
	spacing, _ := strconv.ParseFloat(r.URL.Query().Get("spacing"), 64)
	if spacing <= 0 {
		spacing = 60
	}
	interval := utils.TickInterval(pps, spacing)
	snap := h.session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interval": interval,
		"ticks":    utils.Ticks(0, snap.GlobalDuration, interval),
	})
}

// --- Transport ---

func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Play(); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *APIHandler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	h.session.Pause()
	h.broadcastState()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time float64 `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.session.Seek(req.Time); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// --- Tracks ---

func (h *APIHandler) MoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req model.Vec
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.session.MoveTrack(mux.Vars(r)["id"], req); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) TrackDepthHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.session.AdjustTrackDepth(mux.Vars(r)["id"], req.Delta); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req engine.TrackUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.session.UpdateTrack(mux.Vars(r)["id"], req); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.session.DeleteTrack(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

// --- Clips ---

// CreateClipHandler places a full-length clip of an already-imported
// source on a track.
func (h *APIHandler) CreateClipHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID  string  `json:"sourceId"`
		StartTime float64 `json:"startTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	id, err := h.session.CreateClip(req.SourceID, mux.Vars(r)["id"], req.StartTime)
	if err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	writeJSON(w, http.StatusOK, map[string]string{"clipId": id})
}

// clipUpdate carries drag deltas from the UI's interaction layer. Each
// non-zero field maps onto one editor operation.
type clipUpdate struct {
	DMove  float64 `json:"dMove"`
	DStart float64 `json:"dStart"`
	DEnd   float64 `json:"dEnd"`
	DGain  float64 `json:"dGain"`
}

func (h *APIHandler) UpdateClipHandler(w http.ResponseWriter, r *http.Request) {
	var req clipUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	id := mux.Vars(r)["id"]

	var err error
	if req.DMove != 0 {
		err = h.session.MoveClip(id, req.DMove)
	}
	if err == nil && req.DStart != 0 {
		err = h.session.TrimStart(id, req.DStart)
	}
	if err == nil && req.DEnd != 0 {
		err = h.session.TrimEnd(id, req.DEnd)
	}
	if err == nil && req.DGain != 0 {
		err = h.session.AdjustClipGain(id, req.DGain)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *APIHandler) DeleteClipHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.session.DeleteClip(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SelectClipHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SelectClip(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SliceClipHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time float64 `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.session.SliceAt(mux.Vars(r)["id"], req.Time); err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// --- Clipboard / mode / export ---

func (h *APIHandler) CopyHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.session.CopySelected(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) PasteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.session.PasteAtPlayhead()
	if err != nil {
		writeError(w, err)
		return
	}
	h.broadcastState()
	writeJSON(w, http.StatusOK, map[string]string{"clipId": id})
}

func (h *APIHandler) ModeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode model.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	h.session.SetMode(req.Mode)
	h.broadcastState()
	w.WriteHeader(http.StatusNoContent)
}

// ExportHandler renders the timeline offline and streams the WAV file
// back as a download.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.session.Export()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logger.Error("write export response failed", logger.ErrorField(err))
	}
}
