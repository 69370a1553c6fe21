package storage

import (
	"context"

	"github.com/mcoot/shiftclock/internal/model"
)

// Storage defines the interface for the status index and session persistence.
// The ledger file remains the durable record; everything here can be rebuilt
// from it or is scoped to a browser session.
type Storage interface {
	// Status index operations (identity -> open clock event)
	SaveOpenEvent(ctx context.Context, event *model.ClockEvent) error
	GetOpenEvent(ctx context.Context, id model.Identity) (*model.ClockEvent, error)
	DeleteOpenEvent(ctx context.Context, id model.Identity) error
	ListOpenEvents(ctx context.Context) ([]*model.ClockEvent, error)
	ReplaceOpenEvents(ctx context.Context, events []*model.ClockEvent) error

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
