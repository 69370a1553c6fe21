package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/shiftclock/internal/services/session"
	"github.com/mcoot/shiftclock/internal/services/shift"
	"github.com/mcoot/shiftclock/internal/web/handler"
	"github.com/mcoot/shiftclock/internal/web/middleware"
	"github.com/mcoot/shiftclock/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	ShiftController *shift.Controller
	SessionService  *session.Service
	Hub             *sse.Hub
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Logging is outermost so recovered panics are logged as 500s with a request id
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	hub := cfg.Hub
	if hub == nil {
		hub = sse.NewHub(cfg.Logger)
		go hub.Run()
	}

	clockHandler := handler.NewClockHandler(cfg.ShiftController, cfg.SessionService, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(hub)

	r.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/events", eventsHandler.Events).Methods(http.MethodGet)

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.Use(middleware.Session(cfg.SessionService, cfg.Logger))
	pages.HandleFunc("/", clockHandler.Index).Methods(http.MethodGet)
	pages.HandleFunc("/clock_in", clockHandler.ClockIn).Methods(http.MethodPost)
	pages.HandleFunc("/clock_out", clockHandler.ClockOut).Methods(http.MethodPost)

	return r
}
