// Package session manages per-user conversation state on top of a pluggable
// repository (in-memory or Redis).
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/assistant"
	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/keylock"
	"sales-assistant-be/pkg/store"
)

const managerModule = "SESSION"

// Repository persists sessions. Implementations store and return copies.
type Repository interface {
	Get(ctx context.Context, id string) (*store.Session, bool, error)
	Save(ctx context.Context, s *store.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteInactiveSince removes sessions whose last activity is before
	// cutoff and reports how many were removed.
	DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int, error)
}

type Config struct {
	TTL              time.Duration
	SweepInterval    time.Duration
	SummaryThreshold int
	SummaryMaxRunes  int
}

func DefaultConfig() Config {
	return Config{
		TTL:              48 * time.Hour,
		SweepInterval:    10 * time.Minute,
		SummaryThreshold: 10,
		SummaryMaxRunes:  600,
	}
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager is the conversation context store. Each call is atomic per
// session id; calls on different ids run in parallel.
type Manager struct {
	repo   Repository
	cfg    Config
	logger logger.ILogger
	locks  *keylock.Locker
	now    func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewManager(repo Repository, cfg Config, log logger.ILogger, opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.SummaryThreshold <= 0 {
		cfg.SummaryThreshold = def.SummaryThreshold
	}
	if cfg.SummaryMaxRunes <= 0 {
		cfg.SummaryMaxRunes = def.SummaryMaxRunes
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	m := &Manager{
		repo:   repo,
		cfg:    cfg,
		logger: log,
		locks:  keylock.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastSweep = m.now()
	return m
}

// load returns the live session for id, creating it when missing and
// reinitialising it when idle past the TTL. Caller holds the key lock.
func (m *Manager) load(ctx context.Context, id string, now time.Time) (*store.Session, bool, error) {
	s, ok, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if !ok {
		return store.NewSession(id, now), true, nil
	}
	if s.Expired(now, m.cfg.TTL) {
		m.logger.Info(managerModule, "Session reinitialised", map[string]interface{}{
			"session_id": id,
			"reason":     assistant.ErrSessionExpired.Error(),
			"idle":       now.Sub(s.LastActiveAt).String(),
		})
		return store.NewSession(id, now), true, nil
	}
	return s, false, nil
}

// Update runs fn on the session under its lock, marks it active and saves
// it. The returned session is a copy.
func (m *Manager) Update(ctx context.Context, id string, fn func(s *store.Session) error) (*store.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty session id", assistant.ErrInvalidInput)
	}
	m.maybeSweep(ctx)

	if err := m.locks.Lock(ctx, id); err != nil {
		return nil, err
	}
	defer m.locks.Unlock(id)

	now := m.now()
	s, _, err := m.load(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		if err := fn(s); err != nil {
			return nil, err
		}
	}
	s.LastActiveAt = now

	if err := m.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return s.Clone(), nil
}

// GetOrCreate returns the session for id without marking it active. A new
// or reinitialised session is saved.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*store.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty session id", assistant.ErrInvalidInput)
	}
	m.maybeSweep(ctx)

	if err := m.locks.Lock(ctx, id); err != nil {
		return nil, err
	}
	defer m.locks.Unlock(id)

	s, created, err := m.load(ctx, id, m.now())
	if err != nil {
		return nil, err
	}
	if created {
		if err := m.repo.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to save session %s: %w", id, err)
		}
	}
	return s.Clone(), nil
}

func (m *Manager) RecordMessage(ctx context.Context, id, text string, isUser bool) error {
	at := m.now()
	_, err := m.Update(ctx, id, func(s *store.Session) error {
		s.AppendMessage(text, isUser, at)
		return nil
	})
	return err
}

func (m *Manager) RecordEntity(ctx context.Context, id string, e store.Entity) error {
	at := m.now()
	_, err := m.Update(ctx, id, func(s *store.Session) error {
		s.Entities.Add(e, at)
		return nil
	})
	return err
}

func (m *Manager) SetTopic(ctx context.Context, id string, topic store.Topic) error {
	_, err := m.Update(ctx, id, func(s *store.Session) error {
		s.Topic = topic
		return nil
	})
	return err
}

func (m *Manager) SetLanguage(ctx context.Context, id, language string) error {
	_, err := m.Update(ctx, id, func(s *store.Session) error {
		s.Language = language
		return nil
	})
	return err
}

// StoreResultSet replaces the session's listing and rewinds its cursor.
func (m *Manager) StoreResultSet(ctx context.Context, id, signature string, records []catalog.ProductRecord) error {
	_, err := m.Update(ctx, id, func(s *store.Session) error {
		s.StoreResultSet(signature, records)
		return nil
	})
	return err
}

// Reset drops everything known about the session. The next access starts
// from scratch.
func (m *Manager) Reset(ctx context.Context, id string) error {
	if err := m.locks.Lock(ctx, id); err != nil {
		return err
	}
	defer m.locks.Unlock(id)

	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to reset session %s: %w", id, err)
	}
	return nil
}

// SweepExpired removes every session idle longer than the TTL.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	now := m.now()

	m.sweepMu.Lock()
	m.lastSweep = now
	m.sweepMu.Unlock()

	n, err := m.repo.DeleteInactiveSince(ctx, now.Add(-m.cfg.TTL))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	if n > 0 {
		m.logger.Info(managerModule, "Expired sessions swept", map[string]interface{}{"count": n})
	}
	return n, nil
}

// maybeSweep runs SweepExpired once the sweep interval has elapsed since the
// last run. It is called on every access; there is no background timer.
func (m *Manager) maybeSweep(ctx context.Context) {
	m.sweepMu.Lock()
	due := m.now().Sub(m.lastSweep) >= m.cfg.SweepInterval
	m.sweepMu.Unlock()
	if !due {
		return
	}
	if _, err := m.SweepExpired(ctx); err != nil {
		m.logger.Warn(managerModule, "Session sweep failed", map[string]interface{}{"error": err.Error()})
	}
}

// Summarize renders the conversation for handover to a human or another
// model. Short conversations are returned verbatim; longer ones are
// condensed to the topic, recent entities and the last exchanges.
func (m *Manager) Summarize(ctx context.Context, id string) (string, error) {
	s, err := m.GetOrCreate(ctx, id)
	if err != nil {
		return "", err
	}

	if len(s.Messages) <= m.cfg.SummaryThreshold {
		var b strings.Builder
		for _, msg := range s.Messages {
			b.WriteString(speaker(msg))
			b.WriteString(": ")
			b.WriteString(msg.Text)
			b.WriteByte('\n')
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}

	var b strings.Builder
	topic := string(s.Topic)
	if topic == "" {
		topic = "none"
	}
	fmt.Fprintf(&b, "Topic: %s\n", topic)

	sections := []struct {
		label string
		kind  store.EntityKind
	}{
		{"Products", store.EntityProduct},
		{"Categories", store.EntityCategory},
		{"Price ranges", store.EntityPriceRange},
		{"Orders", store.EntityOrder},
		{"Features", store.EntityFeature},
	}
	for _, sec := range sections {
		if values := s.Entities.Recent(sec.kind, 3); len(values) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", sec.label, strings.Join(values, ", "))
		}
	}

	b.WriteString("Recent:\n")
	recent := s.Messages
	if len(recent) > 8 {
		recent = recent[len(recent)-8:]
	}
	for _, msg := range recent {
		fmt.Fprintf(&b, "%s: %s\n", speaker(msg), truncateRunes(msg.Text, 80))
	}

	return truncateRunes(strings.TrimRight(b.String(), "\n"), m.cfg.SummaryMaxRunes), nil
}

func speaker(msg store.Message) string {
	if msg.IsUser {
		return "User"
	}
	return "Assistant"
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
