package factory

import (
	"path/filepath"
	"time"

	"github.com/mcoot/shiftclock/internal/dependencies/mocks"
	"github.com/mcoot/shiftclock/internal/services/session"
	"github.com/mcoot/shiftclock/internal/storage/memory"
)

// TestSessionSecret signs sessions in apps built by NewTestApp
const TestSessionSecret = "test-secret"

// TestSessionConfig returns session settings for tests: a fixed secret and
// a one hour TTL
func TestSessionConfig() session.Config {
	return session.Config{Secret: TestSessionSecret, TTL: time.Hour}
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	RosterPath string
	LedgerPath string
}

// NewTestApp creates an App with mocked clock and randomness whose roster
// (students.csv) and ledger (clock_in_data.csv) live in dir. The roster
// file is not created.
func NewTestApp(dir string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		RosterPath:    filepath.Join(dir, "students.csv"),
		LedgerPath:    filepath.Join(dir, "clock_in_data.csv"),
		SessionConfig: TestSessionConfig(),
	}
	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, nopLogger())
	if err != nil {
		// Only fails on a missing secret, which is fixed above
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		RosterPath: cfg.RosterPath,
		LedgerPath: cfg.LedgerPath,
	}
}
