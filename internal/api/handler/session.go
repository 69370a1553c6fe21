package handler

import (
	"net/http"

	"github.com/mcoot/shiftclock/internal/api/response"
	"github.com/mcoot/shiftclock/internal/services/session"
)

// SessionHandler issues API sessions
type SessionHandler struct {
	sessions *session.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionResponse{
		SessionToken: h.sessions.Sign(sess.Token),
	})
}
