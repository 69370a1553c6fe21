package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/shiftclock/internal/api/handler"
	"github.com/mcoot/shiftclock/internal/api/middleware"
	"github.com/mcoot/shiftclock/internal/services/session"
	"github.com/mcoot/shiftclock/internal/services/shift"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	ShiftController *shift.Controller
	SessionService  *session.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.SessionService)
	clockHandler := handler.NewClockHandler(cfg.ShiftController, cfg.SessionService, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	// Unauthenticated routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)

	// Session-scoped routes
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(cfg.SessionService))
	protected.HandleFunc("/people", clockHandler.People).Methods(http.MethodGet)
	protected.HandleFunc("/clock-in", clockHandler.ClockIn).Methods(http.MethodPost)
	protected.HandleFunc("/clock-out", clockHandler.ClockOut).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
