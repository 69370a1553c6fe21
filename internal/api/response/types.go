package response

import (
	"github.com/mcoot/shiftclock/internal/model"
)

// SessionResponse is returned when a session is created
type SessionResponse struct {
	SessionToken string `json:"session_token"`
}

// Person is a roster entry with its current status
type Person struct {
	Number    string `json:"number"`
	Name      string `json:"name"`
	ClockedIn bool   `json:"clocked_in"`
	Since     string `json:"since,omitempty"`
	EventID   string `json:"event_id,omitempty"`
}

// PersonFromModel converts a model.PersonStatus
func PersonFromModel(s model.PersonStatus) Person {
	return Person{
		Number:    string(s.Identity),
		Name:      s.DisplayName,
		ClockedIn: s.ClockedIn,
		Since:     s.Since,
		EventID:   string(s.EventID),
	}
}

// PeopleResponse lists the roster
type PeopleResponse struct {
	People []Person `json:"people"`
}

// PeopleFromModel converts a roster listing
func PeopleFromModel(statuses []model.PersonStatus) PeopleResponse {
	people := make([]Person, len(statuses))
	for i, s := range statuses {
		people[i] = PersonFromModel(s)
	}
	return PeopleResponse{People: people}
}

// ClockEvent is a shift as recorded in the ledger
type ClockEvent struct {
	Number       string `json:"student_number"`
	Name         string `json:"name"`
	EventID      string `json:"event_id"`
	ClockInTime  string `json:"clock_in_time"`
	ClockOutTime string `json:"clock_out_time,omitempty"`
	Status       string `json:"status"`
}

// ClockEventFromModel converts a model.ClockEvent
func ClockEventFromModel(e *model.ClockEvent) ClockEvent {
	return ClockEvent{
		Number:       string(e.Identity),
		Name:         e.DisplayName,
		EventID:      string(e.EventID),
		ClockInTime:  e.ClockInTime,
		ClockOutTime: e.ClockOutTime,
		Status:       string(e.Status),
	}
}
