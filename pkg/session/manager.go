package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/callguide/roteiro/internal/logging"
	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates many operator sessions, ensuring safe concurrent
// operations. It uses reference counting to garbage collect unused locks
// and persists session snapshots through a SessionStore so sessions
// survive a server restart.
type Manager struct {
	steps    ports.StepStore
	products ports.ProductResolver
	store    ports.SessionStore
	hooks    domain.LifecycleHooks

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Map of active locks
	live  map[string]*Session   // Sessions currently held in memory

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) ManagerOption {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithManagerLogger configures a logger for the Manager and the sessions it creates.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerHooks registers lifecycle hooks on every session the Manager creates.
func WithManagerHooks(hooks domain.LifecycleHooks) ManagerOption {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a Session Manager backed by the given stores.
func NewManager(steps ports.StepStore, products ports.ProductResolver, store ports.SessionStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		steps:    steps,
		products: products,
		store:    store,
		locks:    make(map[string]*lockEntry),
		live:     make(map[string]*Session),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// withLock executes a function while holding the lock for the session.
func (m *Manager) withLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// session returns the live session for the ID, rehydrating it from the
// store if necessary. Caller must hold the session lock.
func (m *Manager) session(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.live[sessionID]
	m.mu.Unlock()
	if ok {
		return sess, nil
	}

	snap, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess = New(m.steps, m.products,
		WithLogger(m.logger.With("session_id", sessionID)),
		WithLifecycleHooks(m.hooks),
	)
	if err := sess.Restore(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", sessionID, err)
	}

	m.mu.Lock()
	m.live[sessionID] = sess
	m.mu.Unlock()
	return sess, nil
}

// persist saves the session snapshot, or drops the record entirely once
// the session has ended. Caller must hold the session lock.
func (m *Manager) persist(ctx context.Context, sessionID string, sess *Session) error {
	snap := sess.Snapshot()
	if !snap.Active {
		m.mu.Lock()
		delete(m.live, sessionID)
		m.mu.Unlock()
		return m.store.Delete(ctx, sessionID)
	}
	return m.store.Save(ctx, sessionID, snap)
}

// StartSession creates a new session for the given attendance configuration
// and returns its generated ID. Configuration failures surface as
// *domain.ConfigurationError and leave nothing behind.
func (m *Manager) StartSession(ctx context.Context, cfg domain.AttendanceConfig) (string, *domain.SessionSnapshot, error) {
	sessionID := uuid.New().String()

	var snap *domain.SessionSnapshot
	err := m.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess := New(m.steps, m.products,
			WithLogger(m.logger.With("session_id", sessionID)),
			WithLifecycleHooks(m.hooks),
		)
		if err := sess.Start(ctx, cfg); err != nil {
			return err
		}

		snap = sess.Snapshot()
		if err := m.store.Save(ctx, sessionID, snap); err != nil {
			// The caller gets no ID, so the session would be unreachable
			// forever. Tear it down so the lifecycle hooks stay balanced.
			sess.Reset(ctx)
			return err
		}

		m.mu.Lock()
		m.live[sessionID] = sess
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return sessionID, snap, nil
}

// Advance follows a button edge for the session. A dangling target is a
// silent no-op per the engine's degradation policy; the returned snapshot
// reflects whatever state the session is in afterwards. An empty
// nextStepID terminates the session and the snapshot comes back inactive.
func (m *Manager) Advance(ctx context.Context, sessionID, nextStepID string) (*domain.SessionSnapshot, error) {
	var snap *domain.SessionSnapshot
	err := m.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := m.session(ctx, sessionID)
		if err != nil {
			return err
		}
		sess.Advance(ctx, nextStepID)
		snap = sess.Snapshot()
		return m.persist(ctx, sessionID, sess)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// GoBack undoes the last transition for the session.
func (m *Manager) GoBack(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	var snap *domain.SessionSnapshot
	err := m.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := m.session(ctx, sessionID)
		if err != nil {
			return err
		}
		sess.GoBack(ctx)
		snap = sess.Snapshot()
		return m.persist(ctx, sessionID, sess)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Search jumps the session to the first step whose title matches the query.
func (m *Manager) Search(ctx context.Context, sessionID, query string) (*domain.SessionSnapshot, bool, error) {
	var (
		snap  *domain.SessionSnapshot
		found bool
	)
	err := m.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := m.session(ctx, sessionID)
		if err != nil {
			return err
		}
		found = sess.JumpToTitle(ctx, query)
		snap = sess.Snapshot()
		return m.persist(ctx, sessionID, sess)
	})
	if err != nil {
		return nil, false, err
	}
	return snap, found, nil
}

// Current returns the session snapshot together with the resolved current step.
func (m *Manager) Current(ctx context.Context, sessionID string) (*domain.SessionSnapshot, *domain.Step, error) {
	var (
		snap *domain.SessionSnapshot
		step *domain.Step
	)
	err := m.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := m.session(ctx, sessionID)
		if err != nil {
			return err
		}
		snap = sess.Snapshot()
		step = sess.CurrentStep()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return snap, step, nil
}

// Reset ends the session and removes its record. Used for "back to start",
// forced logout and the scheduled daily auto-logout.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	return m.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := m.session(ctx, sessionID)
		if err != nil {
			return err
		}
		sess.Reset(ctx)
		return m.persist(ctx, sessionID, sess)
	})
}

// ResetAll ends every stored session. Errors on individual sessions are
// logged and skipped so one broken record cannot block the daily logout.
func (m *Manager) ResetAll(ctx context.Context) error {
	ids, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, id := range ids {
		if err := m.Reset(ctx, id); err != nil {
			m.logger.Warn("failed to reset session during sweep", "session_id", id, "err", err)
		}
	}
	return nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}
