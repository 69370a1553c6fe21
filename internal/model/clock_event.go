package model

import "time"

// EventID correlates a clock-in row with its eventual clock-out update
type EventID string

// EventIDLength is the number of characters in an EventID
const EventIDLength = 8

// TimestampLayout formats clock-in and clock-out times (HH:MM:SS DD-MM-YYYY)
const TimestampLayout = "15:04:05 02-01-2006"

// EventStatus is the lifecycle state of a ledger row
type EventStatus string

const (
	StatusClockIn  EventStatus = "clock-in"
	StatusClockOut EventStatus = "clock-out"
)

// ClockEvent is a single ledger row
type ClockEvent struct {
	Identity     Identity    `json:"identity"`
	DisplayName  string      `json:"display_name"`
	EventID      EventID     `json:"event_id"`
	ClockInTime  string      `json:"clock_in_time"`
	ClockOutTime string      `json:"clock_out_time"`
	Status       EventStatus `json:"status"`
}

// IsOpen returns true if the event has not been clocked out
func (e *ClockEvent) IsOpen() bool {
	return e.Status == StatusClockIn
}

// FormatTimestamp renders t in the ledger timestamp layout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
