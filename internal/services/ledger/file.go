package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/shiftclock/internal/model"
)

// Ledger rows carry six columns:
// identity, display_name, event_id, clock_in_time, clock_out_time, status
const columnCount = 6

const (
	colIdentity = iota
	colDisplayName
	colEventID
	colClockIn
	colClockOut
	colStatus
)

func toRow(e model.ClockEvent) []string {
	return []string{
		string(e.Identity),
		e.DisplayName,
		string(e.EventID),
		e.ClockInTime,
		e.ClockOutTime,
		string(e.Status),
	}
}

func fromRow(row []string) model.ClockEvent {
	return model.ClockEvent{
		Identity:     model.Identity(row[colIdentity]),
		DisplayName:  row[colDisplayName],
		EventID:      model.EventID(row[colEventID]),
		ClockInTime:  row[colClockIn],
		ClockOutTime: row[colClockOut],
		Status:       model.EventStatus(row[colStatus]),
	}
}

// appendEvent appends one row, creating the file if needed
func appendEvent(path string, e model.ClockEvent) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// A hand-edited ledger may lack a trailing newline
	info, err := file.Stat()
	if err != nil {
		return err
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, size-1); err != nil {
			return err
		}
		if last[0] != '\n' {
			if _, err := file.Write([]byte("\n")); err != nil {
				return err
			}
		}
	}

	w := csv.NewWriter(file)
	if err := w.Write(toRow(e)); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// closeEvent marks the first open row matching identity and event id as
// clocked out. Every other record is copied through byte-for-byte. The file
// is only rewritten when a row matched.
func closeEvent(path string, id model.Identity, eventID model.EventID, clockOutTime string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	var out bytes.Buffer
	out.Grow(len(data) + len(clockOutTime))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	updated := false
	prev := int64(0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, err
		}
		offset := reader.InputOffset()
		raw := data[prev:offset]
		prev = offset

		if updated || !matches(row, id, eventID) {
			out.Write(raw)
			continue
		}

		row[colClockOut] = clockOutTime
		row[colStatus] = string(model.StatusClockOut)
		encoded, err := encodeLike(raw, row)
		if err != nil {
			return false, err
		}
		out.Write(encoded)
		updated = true
	}
	out.Write(data[prev:])

	if !updated {
		return false, nil
	}
	if err := replaceFile(path, out.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

func matches(row []string, id model.Identity, eventID model.EventID) bool {
	return len(row) >= columnCount &&
		row[colIdentity] == string(id) &&
		row[colEventID] == string(eventID) &&
		row[colStatus] == string(model.StatusClockIn)
}

// encodeLike re-encodes row keeping the blank-line prefix and line ending of raw
func encodeLike(raw []byte, row []string) ([]byte, error) {
	body := strings.TrimLeft(string(raw), "\r\n")
	prefix := raw[:len(raw)-len(body)]

	var buf bytes.Buffer
	buf.Write(prefix)

	w := csv.NewWriter(&buf)
	w.UseCRLF = strings.HasSuffix(body, "\r\n")
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	encoded := buf.Bytes()
	if !strings.HasSuffix(body, "\n") {
		encoded = bytes.TrimRight(encoded, "\r\n")
	}
	return encoded, nil
}

// replaceFile writes data to a temp file beside path and renames it into place
func replaceFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// readOpenEvents returns rows still marked clock-in. When an identity has
// several open rows the last one wins; order follows first appearance.
func readOpenEvents(path string) ([]model.ClockEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.ClockEvent{}, nil
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	open := []model.ClockEvent{}
	index := make(map[model.Identity]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < columnCount {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d columns, got %d: %w", line, columnCount, len(row), model.ErrMalformedRow)
		}

		event := fromRow(row)
		if !event.IsOpen() {
			continue
		}
		if i, ok := index[event.Identity]; ok {
			open[i] = event
			continue
		}
		index[event.Identity] = len(open)
		open = append(open, event)
	}
	return open, nil
}
