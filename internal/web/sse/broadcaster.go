package sse

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/web/templates/components"
)

// StatusUpdateEvent is the SSE event name carrying the re-rendered table
const StatusUpdateEvent = "status-update"

// StatusLister provides the roster with current status
type StatusLister interface {
	ListStatus(ctx context.Context, sess *model.Session) ([]model.PersonStatus, error)
}

// Broadcaster pushes the status table to every board after a transition
type Broadcaster struct {
	hub    *Hub
	lister StatusLister
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, lister StatusLister, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		lister: lister,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// StatusChanged re-renders the status table and broadcasts it
func (b *Broadcaster) StatusChanged(ctx context.Context) {
	if b.hub.ClientCount() == 0 {
		return
	}

	html, err := b.RenderStatusTable(ctx)
	if err != nil {
		b.logger.Error("sse failed to render status table", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(StatusUpdateEvent, html)
}

// RenderStatusTable renders the table as seen without a session
func (b *Broadcaster) RenderStatusTable(ctx context.Context) (string, error) {
	statuses, err := b.lister.ListStatus(ctx, nil)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := components.StatusTable(statuses).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
