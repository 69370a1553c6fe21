package session

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/shiftclock/internal/dependencies/clock"
	"github.com/mcoot/shiftclock/internal/dependencies/random"
	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/storage"
)

// Errors
var (
	ErrMissingSecret    = errors.New("session secret is required")
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrExpired          = errors.New("session expired")
)

const (
	tokenLength   = 32
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Config holds configuration for the session service
type Config struct {
	Secret string
	TTL    time.Duration
}

// DefaultConfig returns default session configuration. Secret must still be set.
func DefaultConfig() Config {
	return Config{
		TTL: 24 * time.Hour,
	}
}

// Service issues browser sessions and signs the tokens handed to clients
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	key [32]byte
	ttl time.Duration
}

// New creates a session Service. It fails if no signing secret is configured.
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Service{
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "session")),
		key:     blake2b.Sum256([]byte(cfg.Secret)),
		ttl:     cfg.TTL,
	}, nil
}

// TTL returns how long a session lives
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// New returns a fresh, unsaved session
func (s *Service) New() *model.Session {
	token := s.random.String(tokenLength, tokenAlphabet)
	return model.NewSession(token, s.clock.Now(), s.ttl)
}

// Create returns a fresh session that has already been persisted
func (s *Service) Create(ctx context.Context) (*model.Session, error) {
	sess := s.New()
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("session created", slog.String("session", shortToken(sess.Token)))
	return sess, nil
}

// Save persists the session and slides its expiry forward
func (s *Service) Save(ctx context.Context, sess *model.Session) error {
	sess.ExpiresAt = s.clock.Now().Add(s.ttl)
	return s.storage.SaveSession(ctx, sess)
}

// Load verifies a signed token and returns the stored session
func (s *Service) Load(ctx context.Context, signed string) (*model.Session, error) {
	token, err := s.Verify(signed)
	if err != nil {
		return nil, err
	}

	sess, err := s.storage.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.clock.Now().After(sess.ExpiresAt) {
		_ = s.storage.DeleteSession(ctx, token)
		return nil, ErrExpired
	}
	return sess, nil
}

// Sign returns the token with its MAC appended, for use as a cookie value
// or bearer token
func (s *Service) Sign(token string) string {
	return token + "." + base64.RawURLEncoding.EncodeToString(s.mac(token))
}

// Verify checks a signed token and returns the bare token
func (s *Service) Verify(signed string) (string, error) {
	token, sig, ok := strings.Cut(signed, ".")
	if !ok || token == "" {
		return "", ErrInvalidSignature
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidSignature
	}
	if subtle.ConstantTimeCompare(got, s.mac(token)) != 1 {
		return "", ErrInvalidSignature
	}
	return token, nil
}

// CleanExpired drops expired sessions from backends that do not expire keys
// on their own (call periodically)
func (s *Service) CleanExpired() int {
	purger, ok := s.storage.(interface {
		PurgeExpiredSessions(now time.Time) int
	})
	if !ok {
		return 0
	}
	removed := purger.PurgeExpiredSessions(s.clock.Now())
	if removed > 0 {
		s.logger.Info("expired sessions removed", slog.Int("removed", removed))
	}
	return removed
}

func (s *Service) mac(token string) []byte {
	h, err := blake2b.New256(s.key[:])
	if err != nil {
		// Only possible with a key longer than 64 bytes
		panic(err)
	}
	_, _ = h.Write([]byte(token))
	return h.Sum(nil)
}

func shortToken(token string) string {
	if len(token) <= 6 {
		return token
	}
	return token[:6] + "…"
}
