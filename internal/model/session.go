package model

import "time"

// SessionEntry records one identity's clock status as seen by a browser session
type SessionEntry struct {
	DisplayName string  `json:"name"`
	ClockInTime string  `json:"clock_in_time"`
	EventID     EventID `json:"unique_id"`
	ClockedIn   bool    `json:"clocked_in"`
}

// Session is per-browser state. Entries are never removed; they only flip
// ClockedIn back to false on clock-out.
type Session struct {
	Token     string                    `json:"token"`
	Entries   map[Identity]SessionEntry `json:"entries"`
	CreatedAt time.Time                 `json:"created_at"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

// NewSession creates an empty session
func NewSession(token string, createdAt time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     token,
		Entries:   make(map[Identity]SessionEntry),
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(ttl),
	}
}

// IsClockedIn returns true if this session holds a clocked-in entry for id
func (s *Session) IsClockedIn(id Identity) bool {
	entry, ok := s.Entries[id]
	return ok && entry.ClockedIn
}

// RecordClockIn stores a clocked-in entry for the event
func (s *Session) RecordClockIn(event ClockEvent) {
	if s.Entries == nil {
		s.Entries = make(map[Identity]SessionEntry)
	}
	s.Entries[event.Identity] = SessionEntry{
		DisplayName: event.DisplayName,
		ClockInTime: event.ClockInTime,
		EventID:     event.EventID,
		ClockedIn:   true,
	}
}

// RecordClockOut marks the identity's entry as clocked out, creating the entry
// from the closed event if this session never saw the clock-in
func (s *Session) RecordClockOut(event ClockEvent) {
	if s.Entries == nil {
		s.Entries = make(map[Identity]SessionEntry)
	}
	entry, ok := s.Entries[event.Identity]
	if !ok {
		entry = SessionEntry{
			DisplayName: event.DisplayName,
			ClockInTime: event.ClockInTime,
			EventID:     event.EventID,
		}
	}
	entry.ClockedIn = false
	s.Entries[event.Identity] = entry
}
