package model

// Identity uniquely identifies a person on the roster (their student number)
type Identity string

// Person is a roster entry
type Person struct {
	Identity    Identity
	DisplayName string
}

// PersonStatus is a roster entry cross-referenced with its current clock status
type PersonStatus struct {
	Person
	ClockedIn bool
	Since     string // clock-in time of the open event, empty when clocked out
	EventID   EventID

	// ThisSession is true when the current browser session performed the clock-in
	ThisSession bool
}
