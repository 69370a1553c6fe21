package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	sharedmw "github.com/mcoot/shiftclock/internal/middleware"
	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/services/session"
	"github.com/mcoot/shiftclock/internal/services/shift"
	"github.com/mcoot/shiftclock/internal/web/middleware"
	"github.com/mcoot/shiftclock/internal/web/templates/layout"
	"github.com/mcoot/shiftclock/internal/web/templates/pages"
)

// Flash texts shown after a rejected transition
const (
	MsgAlreadyClockedIn = "Error: you are already clocked in"
	MsgNotClockedIn     = "Error: you are not clocked in"
	MsgUnknownNumber    = "Error: unknown student number"
	MsgNumberRequired   = "Error: student number is required"
)

// ClockHandler serves the clock page and its two form actions
type ClockHandler struct {
	controller *shift.Controller
	sessions   *session.Service
	logger     *slog.Logger
}

// NewClockHandler creates a new ClockHandler
func NewClockHandler(controller *shift.Controller, sessions *session.Service, logger *slog.Logger) *ClockHandler {
	return &ClockHandler{
		controller: controller,
		sessions:   sessions,
		logger:     logger,
	}
}

// Index renders every roster entry with its status
func (h *ClockHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	statuses, err := h.controller.ListStatus(r.Context(), sess)
	if err != nil {
		h.serverError(w, r, "failed to list status", err)
		return
	}

	data := pages.IndexData{
		PageData: layout.PageData{
			Title: "Clock",
			Flash: middleware.GetFlash(r.Context()),
		},
		People: statuses,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Index(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render index", slog.String("error", err.Error()))
	}
}

// ClockIn handles the clock-in form
func (h *ClockHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.ClockIn, "Clocked in: ")
}

// ClockOut handles the clock-out form
func (h *ClockHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.ClockOut, "Clocked out: ")
}

type transitionFunc func(ctx context.Context, sess *model.Session, id model.Identity) (*model.ClockEvent, error)

func (h *ClockHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc, successPrefix string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	number := strings.TrimSpace(r.PostFormValue("student_number"))
	if number == "" {
		h.redirectWithFlash(w, r, middleware.FlashError, MsgNumberRequired)
		return
	}

	event, err := fn(r.Context(), middleware.GetSession(r.Context()), model.Identity(number))
	switch {
	case err == nil:
	case errors.Is(err, model.ErrAlreadyClockedIn):
		h.redirectWithFlash(w, r, middleware.FlashError, MsgAlreadyClockedIn)
		return
	case errors.Is(err, model.ErrNotClockedIn):
		h.redirectWithFlash(w, r, middleware.FlashError, MsgNotClockedIn)
		return
	case errors.Is(err, model.ErrPersonNotFound):
		h.redirectWithFlash(w, r, middleware.FlashError, MsgUnknownNumber)
		return
	default:
		h.serverError(w, r, "clock transition failed", err)
		return
	}

	if err := middleware.CommitSession(w, r, h.sessions); err != nil {
		// The ledger already holds the transition; only the browser history is lost
		sharedmw.Logger(r.Context(), h.logger).Error("failed to save session", slog.String("error", err.Error()))
	}
	h.redirectWithFlash(w, r, middleware.FlashSuccess, successPrefix+event.DisplayName)
}

func (h *ClockHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, flashType, message string) {
	middleware.SetFlash(w, flashType, message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ClockHandler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	sharedmw.Logger(r.Context(), h.logger).Error(msg, slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
