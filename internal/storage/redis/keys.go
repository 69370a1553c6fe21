package redis

import "fmt"

// Key prefix for all shiftclock data
const keyPrefix = "shiftclock"

// openEventsKey returns the Redis key for the HASH of identity -> open clock event
func openEventsKey() string {
	return fmt.Sprintf("%s:open_events", keyPrefix)
}

// sessionKey returns the Redis key for a browser session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}
