package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// DefaultUploadLimit caps request bodies on the image endpoint. The advised
// image size is smaller; this only protects the server.
const DefaultUploadLimit = 32 << 20

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type Handler struct {
	svc         Service
	uploadLimit int64
	logger      *slog.Logger

	// keepAliveEvery is how often a watching client renews its session.
	keepAliveEvery time.Duration
}

type HandlerOption func(*Handler)

// WithSessionTTL makes WebSocket watchers renew their session often enough
// that it does not expire while they are connected.
func WithSessionTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		if ttl > 0 {
			h.keepAliveEvery = min(h.keepAliveEvery, ttl/2)
		}
	}
}

func NewHandler(svc Service, uploadLimit int64, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if uploadLimit <= 0 {
		uploadLimit = DefaultUploadLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: svc, uploadLimit: uploadLimit, logger: logger, keepAliveEvery: wsPingEvery}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StreamEvent is one SSE or WebSocket frame.
type StreamEvent struct {
	Type    string    `json:"type"` // "session" or "error"
	Session *Snapshot `json:"session,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type SelectImageResponse struct {
	Advisory Message  `json:"advisory"`
	Session  Snapshot `json:"session"`
}

type StartAnalysisResponse struct {
	Started bool     `json:"started"`
	Session Snapshot `json:"session"`
}

type ConditionResponse struct {
	catalog.DiagnosisRecord
	Overview   string   `json:"overview"`
	Prevention []string `json:"prevention"`
}

type wsInbound struct {
	Type string `json:"type"` // "start" or "reset"
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/healthz", h.Health)
	r.Get("/catalog", h.GetCatalog)
	r.Get("/catalog/{name}", h.GetCondition)
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Post("/image", h.UploadImage)
		r.Get("/image", h.GetImage)
		r.Post("/analyze", h.StartAnalysis)
		r.Post("/analyze/stream", h.StartAnalysisStream)
		r.Post("/reset", h.Reset)
		r.Get("/ws", h.Watch)
		r.Get("/result.md", h.ResultMarkdown)
		r.Get("/result.pdf", h.ResultPDF)
	})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"diseases": h.svc.Catalog().Records()})
}

// GetCondition returns one catalog entry with its overview and prevention tips.
func (h *Handler) GetCondition(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "Invalid condition name", http.StatusBadRequest)
		return
	}
	rec, err := h.svc.Condition(name)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConditionResponse{
		DiagnosisRecord: rec,
		Overview:        Overview(rec.Name),
		Prevention:      PreventionTips(rec.Status),
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.CreateSession(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage expects a multipart form with the file in the "image" field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Error retrieving image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read image file", http.StatusBadRequest)
		return
	}

	msg, snap, err := h.svc.SelectImage(r.Context(), id, Upload{
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectImageResponse{Advisory: msg, Session: snap})
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	img, err := h.svc.Image(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", img.MediaType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img.Bytes())
}

func (h *Handler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	started, snap, err := h.svc.StartAnalysis(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, StartAnalysisResponse{Started: started, Session: snap})
}

// StartAnalysisStream starts (or joins) a run and streams session snapshots as
// server-sent events until the run ends or the client goes away.
func (h *Handler) StartAnalysisStream(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe first so no step between start and the first read is missed.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	updates, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	started, snap, err := h.svc.StartAnalysis(ctx, id)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(ev StreamEvent) {
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	if !started && snap.Phase != PhaseAnalyzing {
		send(StreamEvent{Type: "session", Session: &snap})
		return
	}

	running := false
	for s := range updates {
		_ = h.svc.KeepAlive(ctx, id)
		send(StreamEvent{Type: "session", Session: &s})
		if s.Phase == PhaseAnalyzing {
			running = true
			continue
		}
		if running {
			return
		}
	}
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Reset(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Watch upgrades to a WebSocket that pushes every session change. Clients may
// send {"type":"start"} or {"type":"reset"}.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.GetSession(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		_ = conn.WriteJSON(StreamEvent{Type: "error", Error: err.Error()})
		return
	}

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		h.logger.Warn("watch set read deadline failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	go h.readCommands(ctx, cancel, conn, id)

	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()
	keepAlive := time.NewTicker(h.keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = h.svc.KeepAlive(ctx, id)
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(StreamEvent{Type: "session", Session: &s}); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := h.svc.KeepAlive(ctx, id); err != nil {
				h.logger.Debug("watched session is gone", "session", id, "err", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, id uuid.UUID) {
	defer cancel()
	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		switch in.Type {
		case "start":
			if _, _, err := h.svc.StartAnalysis(ctx, id); err != nil {
				h.logger.Warn("watch start failed", "err", err)
			}
		case "reset":
			if _, err := h.svc.Reset(ctx, id); err != nil {
				h.logger.Warn("watch reset failed", "err", err)
			}
		default:
			h.logger.Debug("ignoring watch command", "type", in.Type)
		}
	}
}

func (h *Handler) ResultMarkdown(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, FormatMarkdown, "text/markdown; charset=utf-8", false)
}

func (h *Handler) ResultPDF(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, FormatPDF, "application/pdf", true)
}

func (h *Handler) result(w http.ResponseWriter, r *http.Request, format ResultFormat, contentType string, attachment bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	body, err := h.svc.RenderResult(r.Context(), id, format)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "diagnosis_"+id.String()+".pdf"))
	}
	_, _ = w.Write(body)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrNoImage), errors.Is(err, catalog.ErrUnknownCondition):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoDiagnosis):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return uuid.UUID{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
