package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/shiftclock/internal/model"
)

// ErrClosed is returned for operations submitted after Close
var ErrClosed = errors.New("ledger closed")

// request is a unit of work executed by the writer goroutine
type request struct {
	fn    func() error
	reply chan error
}

// Ledger is the CSV attendance log. A single goroutine owns the file and
// runs every read and write in submission order, so a clock-out rewrite can
// never interleave with another append or rewrite from this process.
type Ledger struct {
	path   string
	logger *slog.Logger

	requests  chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New creates a Ledger for the file at path and starts its writer goroutine.
// The file is created on the first append.
func New(path string, logger *slog.Logger) *Ledger {
	l := &Ledger{
		path:     path,
		logger:   logger.With(slog.String("component", "ledger")),
		requests: make(chan request),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Path returns the ledger file location
func (l *Ledger) Path() string {
	return l.path
}

// Close stops the writer goroutine after the in-flight request completes
func (l *Ledger) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	<-l.stopped
}

func (l *Ledger) run() {
	defer close(l.stopped)
	l.logger.Info("ledger writer started", slog.String("path", l.path))
	for {
		select {
		case req := <-l.requests:
			req.reply <- req.fn()
		case <-l.done:
			l.logger.Info("ledger writer stopped")
			return
		}
	}
}

// submit hands fn to the writer goroutine and waits for its result. ctx only
// bounds the wait for the writer; once fn is accepted it runs to completion
// and its result is returned, so a caller never sees a failure for a write
// that reached the file.
func (l *Ledger) submit(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := request{fn: fn, reply: make(chan error, 1)}

	select {
	case l.requests <- req:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-req.reply
}

// AppendClockIn appends an open clock-in row for the event. The caller is
// responsible for making sure the identity has no other open row.
func (l *Ledger) AppendClockIn(ctx context.Context, event model.ClockEvent) error {
	event.ClockOutTime = ""
	event.Status = model.StatusClockIn

	err := l.submit(ctx, func() error {
		return appendEvent(l.path, event)
	})
	if err != nil {
		return err
	}

	l.logger.Info("clock-in recorded",
		slog.String("identity", string(event.Identity)),
		slog.String("event_id", string(event.EventID)))
	return nil
}

// CloseClockIn sets the clock-out time on the open row for identity and
// eventID and rewrites the ledger. It reports whether such a row existed.
func (l *Ledger) CloseClockIn(ctx context.Context, id model.Identity, eventID model.EventID, clockOutTime string) (bool, error) {
	var updated bool
	err := l.submit(ctx, func() error {
		var err error
		updated, err = closeEvent(l.path, id, eventID, clockOutTime)
		return err
	})
	if err != nil {
		return false, err
	}

	if updated {
		l.logger.Info("clock-out recorded",
			slog.String("identity", string(id)),
			slog.String("event_id", string(eventID)))
	}
	return updated, nil
}

// OpenEvents returns every row still marked clock-in, latest per identity
func (l *Ledger) OpenEvents(ctx context.Context) ([]model.ClockEvent, error) {
	var events []model.ClockEvent
	err := l.submit(ctx, func() error {
		var err error
		events, err = readOpenEvents(l.path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
