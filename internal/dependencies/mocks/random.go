package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/shiftclock/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// ShortIDResults is a queue of results to return from ShortID
	ShortIDResults []string
	shortIDIndex   int

	// counter makes drained results unique
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result. Once the queue is drained it returns
// a zero-padded counter of the requested length.
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex >= len(r.StringResults) {
		r.counter++
		return fmt.Sprintf("%0*d", length, r.counter)
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// ShortID returns the next queued result. Once the queue is drained it returns
// a zero-padded counter of n digits.
func (r *MockRandom) ShortID(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shortIDIndex >= len(r.ShortIDResults) {
		r.counter++
		return fmt.Sprintf("%0*d", n, r.counter)
	}
	result := r.ShortIDResults[r.shortIDIndex]
	r.shortIDIndex++
	return result
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}

// QueueShortID adds values to the ShortID result queue
func (r *MockRandom) QueueShortID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ShortIDResults = append(r.ShortIDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = nil
	r.stringIndex = 0
	r.ShortIDResults = nil
	r.shortIDIndex = 0
	r.counter = 0
}
