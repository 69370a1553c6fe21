package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/shiftclock/internal/api/apierr"
	"github.com/mcoot/shiftclock/internal/api/middleware"
	"github.com/mcoot/shiftclock/internal/api/request"
	"github.com/mcoot/shiftclock/internal/api/response"
	sharedmw "github.com/mcoot/shiftclock/internal/middleware"
	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/services/session"
	"github.com/mcoot/shiftclock/internal/services/shift"
)

// ClockHandler handles roster and clock endpoints
type ClockHandler struct {
	controller *shift.Controller
	sessions   *session.Service
	logger     *slog.Logger
}

// NewClockHandler creates a new clock handler
func NewClockHandler(controller *shift.Controller, sessions *session.Service, logger *slog.Logger) *ClockHandler {
	return &ClockHandler{
		controller: controller,
		sessions:   sessions,
		logger:     logger,
	}
}

// People handles GET /api/v1/people
func (h *ClockHandler) People(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.controller.ListStatus(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PeopleFromModel(statuses))
}

// ClockIn handles POST /api/v1/clock-in
func (h *ClockHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.ClockIn, http.StatusCreated)
}

// ClockOut handles POST /api/v1/clock-out
func (h *ClockHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.ClockOut, http.StatusOK)
}

type transitionFunc func(ctx context.Context, sess *model.Session, id model.Identity) (*model.ClockEvent, error)

func (h *ClockHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc, status int) {
	var req request.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	number := strings.TrimSpace(req.StudentNumber)
	if number == "" {
		WriteError(w, NewInvalidRequestError("student_number is required"))
		return
	}

	sess := middleware.MustGetSession(r.Context())
	event, err := fn(r.Context(), sess, model.Identity(number))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.sessions.Save(r.Context(), sess); err != nil {
		sharedmw.Logger(r.Context(), h.logger).Error("failed to save session", slog.String("error", err.Error()))
	}

	response.JSON(w, status, response.ClockEventFromModel(event))
}

func (h *ClockHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		sharedmw.Logger(r.Context(), h.logger).Error("api request failed", slog.String("error", err.Error()))
	}
	WriteError(w, err)
}
