package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/shiftclock/internal/dependencies/clock"
	"github.com/mcoot/shiftclock/internal/dependencies/random"
	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/storage"
)

// Roster resolves identities to people
type Roster interface {
	List(ctx context.Context) ([]model.Person, error)
	Lookup(ctx context.Context, id model.Identity) (model.Person, error)
}

// Ledger is the durable attendance log
type Ledger interface {
	AppendClockIn(ctx context.Context, event model.ClockEvent) error
	CloseClockIn(ctx context.Context, id model.Identity, eventID model.EventID, clockOutTime string) (bool, error)
	OpenEvents(ctx context.Context) ([]model.ClockEvent, error)
}

// StatusNotifier is told after every successful transition
type StatusNotifier interface {
	StatusChanged(ctx context.Context)
}

// Controller drives the OUT -> IN -> OUT state machine for every identity.
// The status index in storage is authoritative for who is clocked in.
type Controller struct {
	roster  Roster
	ledger  Ledger
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// mu serializes transitions so check-then-write is atomic per process
	mu        sync.Mutex
	notifiers []StatusNotifier
}

// New creates a Controller
func New(roster Roster, ledger Ledger, store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		roster:  roster,
		ledger:  ledger,
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "shift")),
	}
}

// AddNotifier registers n to be told about status changes
func (c *Controller) AddNotifier(n StatusNotifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifiers = append(c.notifiers, n)
}

// ClockIn starts a shift for id. sess may be nil.
func (c *Controller) ClockIn(ctx context.Context, sess *model.Session, id model.Identity) (*model.ClockEvent, error) {
	person, err := c.roster.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	event, err := c.clockIn(ctx, person)
	notifiers := c.notifiers
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if sess != nil {
		sess.RecordClockIn(*event)
	}
	c.notify(ctx, notifiers)
	return event, nil
}

func (c *Controller) clockIn(ctx context.Context, person model.Person) (*model.ClockEvent, error) {
	_, err := c.storage.GetOpenEvent(ctx, person.Identity)
	if err == nil {
		return nil, model.ErrAlreadyClockedIn
	}
	if !errors.Is(err, model.ErrNotClockedIn) {
		return nil, fmt.Errorf("check status: %w", err)
	}

	event := &model.ClockEvent{
		Identity:    person.Identity,
		DisplayName: person.DisplayName,
		EventID:     model.EventID(c.random.ShortID(model.EventIDLength)),
		ClockInTime: model.FormatTimestamp(c.clock.Now()),
		Status:      model.StatusClockIn,
	}

	// From here the ledger and the index must change together; a client
	// disconnect must not stop one write after the other has landed.
	commit := context.WithoutCancel(ctx)
	if err := c.ledger.AppendClockIn(commit, *event); err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}
	if err := c.storage.SaveOpenEvent(commit, event); err != nil {
		c.revertClockIn(commit, event)
		return nil, fmt.Errorf("save status: %w", err)
	}

	c.logger.Info("clocked in",
		slog.String("identity", string(event.Identity)),
		slog.String("event_id", string(event.EventID)))
	return event, nil
}

// revertClockIn closes the ledger row just appended for event so the ledger
// does not keep an open row the index never recorded
func (c *Controller) revertClockIn(ctx context.Context, event *model.ClockEvent) {
	logger := c.logger.With(
		slog.String("identity", string(event.Identity)),
		slog.String("event_id", string(event.EventID)))

	if _, err := c.ledger.CloseClockIn(ctx, event.Identity, event.EventID, event.ClockInTime); err != nil {
		logger.Error("ledger row left open after status save failed; restart to rebuild",
			slog.String("error", err.Error()))
		return
	}
	logger.Warn("clock-in reverted after status save failed")
}

// ClockOut ends the open shift for id. sess may be nil.
func (c *Controller) ClockOut(ctx context.Context, sess *model.Session, id model.Identity) (*model.ClockEvent, error) {
	c.mu.Lock()
	event, err := c.clockOut(ctx, id)
	notifiers := c.notifiers
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if sess != nil {
		sess.RecordClockOut(*event)
	}
	c.notify(ctx, notifiers)
	return event, nil
}

func (c *Controller) clockOut(ctx context.Context, id model.Identity) (*model.ClockEvent, error) {
	open, err := c.storage.GetOpenEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	ts := model.FormatTimestamp(c.clock.Now())
	commit := context.WithoutCancel(ctx)
	updated, err := c.ledger.CloseClockIn(commit, id, open.EventID, ts)
	if err != nil {
		return nil, fmt.Errorf("close ledger row: %w", err)
	}
	if !updated {
		c.logger.Warn("no open ledger row for clock-out",
			slog.String("identity", string(id)),
			slog.String("event_id", string(open.EventID)))
	}

	// If this fails the index still shows id clocked in while the ledger row
	// is closed; a retried clock-out finds no open row, warns and clears it.
	if err := c.storage.DeleteOpenEvent(commit, id); err != nil {
		return nil, fmt.Errorf("clear status: %w", err)
	}

	closed := *open
	closed.ClockOutTime = ts
	closed.Status = model.StatusClockOut

	c.logger.Info("clocked out",
		slog.String("identity", string(id)),
		slog.String("event_id", string(closed.EventID)))
	return &closed, nil
}

// ListStatus returns every roster entry in file order with its current
// status. sess may be nil.
func (c *Controller) ListStatus(ctx context.Context, sess *model.Session) ([]model.PersonStatus, error) {
	people, err := c.roster.List(ctx)
	if err != nil {
		return nil, err
	}

	open, err := c.storage.ListOpenEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list status: %w", err)
	}
	byID := make(map[model.Identity]*model.ClockEvent, len(open))
	for _, e := range open {
		byID[e.Identity] = e
	}

	statuses := make([]model.PersonStatus, 0, len(people))
	for _, p := range people {
		status := model.PersonStatus{Person: p}
		if e, ok := byID[p.Identity]; ok {
			status.ClockedIn = true
			status.Since = e.ClockInTime
			status.EventID = e.EventID
		}
		if sess != nil {
			status.ThisSession = sess.IsClockedIn(p.Identity)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Rebuild replaces the status index with the ledger's open rows and returns
// how many identities are clocked in
func (c *Controller) Rebuild(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.ledger.OpenEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("read open events: %w", err)
	}

	open := make([]*model.ClockEvent, len(events))
	for i := range events {
		open[i] = &events[i]
	}
	if err := c.storage.ReplaceOpenEvents(ctx, open); err != nil {
		return 0, fmt.Errorf("replace status index: %w", err)
	}

	c.logger.Info("status index rebuilt", slog.Int("clocked_in", len(open)))
	return len(open), nil
}

func (c *Controller) notify(ctx context.Context, notifiers []StatusNotifier) {
	for _, n := range notifiers {
		n.StatusChanged(ctx)
	}
}
