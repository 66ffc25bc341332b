package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
)

const (
	// DefaultSessionKey is the durable key of the single session record.
	DefaultSessionKey = "walletlink:session"

	// DefaultSessionTTL bounds how long a session survives.
	DefaultSessionTTL = 24 * time.Hour
)

// SessionStore keeps the single wallet session in memory and in durable
// storage. Expired or unreadable records are removed on read.
type SessionStore struct {
	store  ports.Store
	codec  ports.SessionCodec
	key    string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu      sync.RWMutex
	current *core.Session
}

// NewSessionStore creates a session store over a durable store
func NewSessionStore(store ports.Store, codec ports.SessionCodec, key string, ttl time.Duration, logger zerolog.Logger) *SessionStore {
	if key == "" {
		key = DefaultSessionKey
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		store:  store,
		codec:  codec,
		key:    key,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the clock used for expiry checks.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// TTL returns the session lifetime.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// HasActiveSession loads the durable record and reports whether it holds a
// live session. A live session is cached for Current.
func (s *SessionStore) HasActiveSession(ctx context.Context) bool {
	raw, err := s.store.Get(ctx, s.key)
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.setCurrent(nil)
		return false
	case err != nil:
		// durable storage unavailable, fall back to what this process knows
		s.logger.Warn().Err(err).Str("key", s.key).Msg("failed to read session record")
		_, ok := s.Current()
		return ok
	}

	session, err := s.codec.Decode(raw)
	if err == nil && !session.Valid() {
		err = fmt.Errorf("%w: missing account", core.ErrSessionCorrupted)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("discarding unreadable session record")
		s.Clear(ctx)
		return false
	}

	if session.Expired(s.now(), s.ttl) {
		s.logger.Info().
			Str("account", session.Account).
			Time("connected_at", session.ConnectedAt).
			Msg("session expired")
		s.Clear(ctx)
		return false
	}

	s.setCurrent(&session)
	return true
}

// Store overwrites the session record.
func (s *SessionStore) Store(ctx context.Context, session core.Session) error {
	if !session.Valid() {
		return fmt.Errorf("%w: missing account", core.ErrSessionCorrupted)
	}

	remaining := s.ttl - session.Age(s.now())
	if remaining <= 0 {
		return fmt.Errorf("%w: session connected at %s already expired", core.ErrStoreOperation, session.ConnectedAt.Format(time.RFC3339))
	}

	raw, err := s.codec.Encode(session)
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, s.key, raw, remaining); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.setCurrent(&session)
	return nil
}

// Clear removes the session from memory and durable storage. It never
// fails; storage errors are logged.
func (s *SessionStore) Clear(ctx context.Context) {
	s.setCurrent(nil)

	if err := s.store.Delete(ctx, s.key); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to delete session record")
	}
}

// Current returns the cached session if it is still live.
func (s *SessionStore) Current() (core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil || s.current.Expired(s.now(), s.ttl) {
		return core.Session{}, false
	}
	return *s.current, true
}

func (s *SessionStore) setCurrent(session *core.Session) {
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
}
