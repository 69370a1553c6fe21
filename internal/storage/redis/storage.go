package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Status index operations

func (s *Storage) SaveOpenEvent(ctx context.Context, event *model.ClockEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, openEventsKey(), string(event.Identity), data).Err()
}

func (s *Storage) GetOpenEvent(ctx context.Context, id model.Identity) (*model.ClockEvent, error) {
	data, err := s.client.HGet(ctx, openEventsKey(), string(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotClockedIn
		}
		return nil, err
	}

	var event model.ClockEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Storage) DeleteOpenEvent(ctx context.Context, id model.Identity) error {
	return s.client.HDel(ctx, openEventsKey(), string(id)).Err()
}

func (s *Storage) ListOpenEvents(ctx context.Context) ([]*model.ClockEvent, error) {
	values, err := s.client.HGetAll(ctx, openEventsKey()).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*model.ClockEvent, 0, len(values))
	for _, val := range values {
		var event model.ClockEvent
		if err := json.Unmarshal([]byte(val), &event); err != nil {
			continue // Skip invalid data
		}
		events = append(events, &event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Identity < events[j].Identity
	})
	return events, nil
}

func (s *Storage) ReplaceOpenEvents(ctx context.Context, events []*model.ClockEvent) error {
	fields := make([]any, 0, len(events)*2)
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		fields = append(fields, string(event.Identity), data)
	}

	// Swap the whole index in one transaction so readers never see it half-built
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, openEventsKey())
		if len(fields) > 0 {
			pipe.HSet(ctx, openEventsKey(), fields...)
		}
		return nil
	})
	return err
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.Entries == nil {
		session.Entries = make(map[model.Identity]model.SessionEntry)
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
