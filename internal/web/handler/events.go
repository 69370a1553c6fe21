package handler

import (
	"net/http"

	sharedmw "github.com/mcoot/shiftclock/internal/middleware"
	"github.com/mcoot/shiftclock/internal/web/sse"
)

// EventsHandler streams live status board updates
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Events serves the SSE stream
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := sharedmw.GetRequestID(r.Context())
	if id == "" {
		id = r.RemoteAddr
	}
	sse.ServeSSE(w, r, h.hub, id)
}

// Healthz is a liveness check
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
