package components

import "github.com/mcoot/shiftclock/internal/model"

// StatusTableID is the element id the live board swaps into
const StatusTableID = "status-table"

// SessionShiftsID is the element id of the list of people this browser clocked in
const SessionShiftsID = "session-shifts"

func clockedInHere(people []model.PersonStatus) []model.PersonStatus {
	var mine []model.PersonStatus
	for _, p := range people {
		if p.ClockedIn && p.ThisSession {
			mine = append(mine, p)
		}
	}
	return mine
}
