package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// reconnectDelay is the retry hint sent to browsers before the first record.
const reconnectDelay = 3 * time.Second

// Handler streams dashboard events to one browser tab per request.
// Mounted at GET /api/v1/stream; the views query parameter narrows frame
// delivery to a comma separated list of view ids.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler returns a Handler bound to manager.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "stream only supports GET", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	out := &recordWriter{
		w:     w,
		rc:    http.NewResponseController(w),
		idle:  2 * h.manager.opts.Heartbeat,
		debug: h.logger,
	}
	if err := out.retry(reconnectDelay); err != nil {
		h.logger.Error("stream not supported by response writer", slog.String("error", err.Error()))
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	views := parseViews(r.URL.Query().Get("views"))
	client, err := h.manager.Connect(views)
	if err != nil {
		h.logger.Error("stream client rejected", slog.String("error", err.Error()))
		http.Error(w, "could not open stream", http.StatusServiceUnavailable)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))
	log.Debug("stream opened", slog.Any("views", views))

	hello := map[string]any{"client_id": client.ID, "views": nonNil(views)}
	if err := out.record("connected", hello); err != nil {
		log.Warn("stream greeting failed", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			log.Debug("stream closed by client")
			return
		case <-client.Done:
			log.Debug("stream closed by server")
			return
		case event, ok := <-client.EventChan:
			if !ok {
				log.Debug("stream closed by server")
				return
			}
			if err := out.record(string(event.Type), event); err != nil {
				log.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// recordWriter frames values as text/event-stream records and flushes each
// one. Record ids count up from 1 per connection.
type recordWriter struct {
	w     io.Writer
	rc    *http.ResponseController
	idle  time.Duration
	seq   uint64
	debug *slog.Logger
}

func (s *recordWriter) retry(d time.Duration) error {
	if _, err := fmt.Fprintf(s.w, "retry: %d\n\n", d.Milliseconds()); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *recordWriter) record(name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", name, err)
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, name, payload); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil {
		return err
	}
	// A stalled reader eventually fails the next write instead of pinning
	// the goroutine forever.
	if err := s.rc.SetWriteDeadline(time.Now().Add(s.idle)); err != nil {
		s.debug.Debug("write deadline unsupported", slog.String("error", err.Error()))
	}
	return nil
}

// parseViews splits the views query value, dropping blanks.
func parseViews(raw string) []string {
	var views []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			views = append(views, v)
		}
	}
	return views
}
