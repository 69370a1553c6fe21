package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case SessionResult:
		_, _ = fmt.Fprintf(o.w, "Token: %s\n", v.SessionToken)
	case PeopleResult:
		o.printPeople(v.People)
	case ClockEvent:
		o.printClockEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// SessionResult response type
type SessionResult struct {
	SessionToken string `json:"session_token"`
}

// Person response type (matches API)
type Person struct {
	Number    string `json:"number"`
	Name      string `json:"name"`
	ClockedIn bool   `json:"clocked_in"`
	Since     string `json:"since,omitempty"`
	EventID   string `json:"event_id,omitempty"`
}

// PeopleResult response type
type PeopleResult struct {
	People []Person `json:"people"`
}

// ClockEvent response type
type ClockEvent struct {
	Number       string `json:"student_number"`
	Name         string `json:"name"`
	EventID      string `json:"event_id"`
	ClockInTime  string `json:"clock_in_time"`
	ClockOutTime string `json:"clock_out_time,omitempty"`
	Status       string `json:"status"`
}

func (o *Output) printPeople(people []Person) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NUMBER\tNAME\tSTATUS\tSINCE")
	for _, p := range people {
		status := "out"
		if p.ClockedIn {
			status = "in"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Number, p.Name, status, p.Since)
	}
	_ = tw.Flush()
}

func (o *Output) printClockEvent(e ClockEvent) {
	if e.Status == "clock-out" {
		_, _ = fmt.Fprintf(o.w, "Clocked out: %s (%s)\n", e.Name, e.Number)
		_, _ = fmt.Fprintf(o.w, "Shift: %s to %s\n", e.ClockInTime, e.ClockOutTime)
	} else {
		_, _ = fmt.Fprintf(o.w, "Clocked in: %s (%s)\n", e.Name, e.Number)
		_, _ = fmt.Fprintf(o.w, "Since: %s\n", e.ClockInTime)
	}
	_, _ = fmt.Fprintf(o.w, "Event: %s\n", e.EventID)
}
