package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	openEvents map[model.Identity]model.ClockEvent
	sessions   map[string]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		openEvents: make(map[model.Identity]model.ClockEvent),
		sessions:   make(map[string]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Status index operations

func (s *Storage) SaveOpenEvent(ctx context.Context, event *model.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openEvents[event.Identity] = *event
	return nil
}

func (s *Storage) GetOpenEvent(ctx context.Context, id model.Identity) (*model.ClockEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.openEvents[id]
	if !ok {
		return nil, model.ErrNotClockedIn
	}
	return &event, nil
}

func (s *Storage) DeleteOpenEvent(ctx context.Context, id model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openEvents, id)
	return nil
}

func (s *Storage) ListOpenEvents(ctx context.Context) ([]*model.ClockEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]*model.ClockEvent, 0, len(s.openEvents))
	for _, event := range s.openEvents {
		e := event
		events = append(events, &e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Identity < events[j].Identity
	})
	return events, nil
}

func (s *Storage) ReplaceOpenEvents(ctx context.Context, events []*model.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openEvents = make(map[model.Identity]model.ClockEvent, len(events))
	for _, event := range events {
		s.openEvents[event.Identity] = *event
	}
	return nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = copySession(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// PurgeExpiredSessions removes sessions that expired before now
func (s *Storage) PurgeExpiredSessions(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// copySession detaches the entries map so callers can mutate freely
func copySession(session *model.Session) *model.Session {
	c := *session
	c.Entries = make(map[model.Identity]model.SessionEntry, len(session.Entries))
	for id, entry := range session.Entries {
		c.Entries[id] = entry
	}
	return &c
}
