package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mcoot/shiftclock/internal/model"
)

// Service loads the roster of people eligible to clock in.
// The file is re-read on every call so edits take effect without a restart.
type Service struct {
	path   string
	logger *slog.Logger
}

// New creates a roster Service reading from the CSV file at path
func New(path string, logger *slog.Logger) *Service {
	return &Service{
		path:   path,
		logger: logger.With(slog.String("component", "roster")),
	}
}

// Path returns the roster file location
func (s *Service) Path() string {
	return s.path
}

// List returns every person on the roster in file order. The header row
// (name,number) is skipped.
func (s *Service) List(ctx context.Context) ([]model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = file.Close() }()

	people, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", s.path, err)
	}
	return people, nil
}

// Lookup finds the person with the given identity
func (s *Service) Lookup(ctx context.Context, id model.Identity) (model.Person, error) {
	people, err := s.List(ctx)
	if err != nil {
		return model.Person{}, err
	}
	for _, p := range people {
		if p.Identity == id {
			return p, nil
		}
	}
	s.logger.Debug("identity not on roster", slog.String("identity", string(id)))
	return model.Person{}, model.ErrPersonNotFound
}

func parse(r io.Reader) ([]model.Person, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip the header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Person{}, nil
		}
		return nil, err
	}

	people := []model.Person{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected name,number: %w", line, model.ErrMalformedRow)
		}
		people = append(people, model.Person{
			Identity:    model.Identity(row[1]),
			DisplayName: row[0],
		})
	}
	return people, nil
}
