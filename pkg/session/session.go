package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/callguide/roteiro/internal/logging"
	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/ports"
)

// Session is the navigation state machine for one active call.
//
// All failure conditions inside a running session resolve to a silent no-op:
// the worst user-visible outcome of a data-integrity problem is a button
// that appears to do nothing. The only typed error surfaces from Start.
//
// Safe for concurrent use. Overlapping lookups follow last-write-wins:
// a transition is applied only if no newer request arrived while its store
// lookup was in flight.
type Session struct {
	steps    ports.StepStore
	products ports.ProductResolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	mu          sync.Mutex
	current     *domain.Step
	history     []string
	config      domain.AttendanceConfig
	active      bool
	searchQuery string

	// reqGen is bumped by every request that may mutate state; a lookup
	// started under an older generation is discarded when it settles.
	reqGen uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets a structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// New creates an unconfigured session backed by the given stores.
func New(steps ports.StepStore, products ports.ProductResolver, opts ...Option) *Session {
	s := &Session{
		steps:    steps,
		products: products,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resolves the configured product and its entry step and activates
// the session. On any failure it returns a *domain.ConfigurationError and
// leaves the session exactly as it was: there is no partial mutation.
func (s *Session) Start(ctx context.Context, cfg domain.AttendanceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	token := s.bump()

	product, err := s.products.GetProductByID(ctx, cfg.ProductID)
	if err != nil {
		return &domain.ConfigurationError{ProductID: cfg.ProductID, Reason: "product not found", Cause: err}
	}
	if product.ScriptID == "" {
		return &domain.ConfigurationError{ProductID: cfg.ProductID, Reason: "product has no script entry point"}
	}

	entry, err := s.steps.GetStepByID(ctx, product.ScriptID, product.ID)
	if err != nil {
		return &domain.ConfigurationError{ProductID: cfg.ProductID, Reason: "entry step " + product.ScriptID + " not found", Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.reqGen {
		// A newer request superseded this start while the lookups were
		// in flight; drop it rather than apply out of order.
		return nil
	}

	s.current = entry
	s.history = []string{entry.ID}
	s.config = cfg
	s.active = true
	s.searchQuery = ""

	s.emitSessionStart(ctx)
	s.emitStepEnter(ctx, entry)
	s.logger.Debug("session started", "product", cfg.ProductID, "entry_step", entry.ID)
	return nil
}

// Advance follows a button edge. An empty nextStepID is the terminal
// transition: the session ends and control returns to the configuration
// state. A target that fails to resolve (dangling reference) is dropped
// with no state change; script authoring mistakes must never strand an
// operator mid-call.
func (s *Session) Advance(ctx context.Context, nextStepID string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}

	if nextStepID == "" {
		s.reqGen++
		s.endLocked(ctx)
		s.mu.Unlock()
		return
	}

	s.reqGen++
	token := s.reqGen
	productID := s.config.ProductID
	from := s.current
	s.mu.Unlock()

	step, err := s.steps.GetStepByID(ctx, nextStepID, productID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.reqGen || !s.active {
		return
	}
	if err != nil {
		s.logger.Warn("dangling step reference dropped", "from", from.ID, "target", nextStepID, "err", err)
		s.emitDanglingRef(ctx, from.ID, nextStepID)
		return
	}

	s.emitStepLeave(ctx, from)
	s.current = step
	s.history = append(s.history, step.ID)
	s.searchQuery = ""
	s.emitStepEnter(ctx, step)
}

// GoBack undoes exactly the last transition. It is a no-op at the entry
// step (guarded by CanGoBack) and when the re-fetch of the previous step
// fails, in which case history is left unpopped so the current step and
// the top of history never disagree.
func (s *Session) GoBack(ctx context.Context) {
	s.mu.Lock()
	if !s.active || len(s.history) <= 1 {
		s.mu.Unlock()
		return
	}

	s.reqGen++
	token := s.reqGen
	target := s.history[len(s.history)-2]
	productID := s.config.ProductID
	from := s.current
	s.mu.Unlock()

	step, err := s.steps.GetStepByID(ctx, target, productID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.reqGen || !s.active || len(s.history) <= 1 {
		return
	}
	if err != nil {
		s.logger.Warn("go back dropped, previous step unresolvable", "target", target, "err", err)
		return
	}

	s.emitStepLeave(ctx, from)
	s.history = s.history[:len(s.history)-1]
	s.current = step
	s.searchQuery = ""
	s.emitStepEnter(ctx, step)
}

// JumpToTitle performs a case-insensitive substring search over all loaded
// step titles and jumps to the first match. The search is not scoped to
// the session's product, and a jump replaces the current step without
// extending history, so GoBack afterwards returns to whatever was on top
// of history before the jump. Both behaviors are intentional: they mirror
// the original operator workflow. Reports whether a match was found.
func (s *Session) JumpToTitle(ctx context.Context, query string) bool {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	if !s.active || q == "" {
		s.mu.Unlock()
		return false
	}
	s.reqGen++
	token := s.reqGen
	s.mu.Unlock()

	all, err := s.steps.ListSteps(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.reqGen || !s.active {
		return false
	}
	if err != nil {
		s.logger.Warn("title search failed", "query", q, "err", err)
		return false
	}

	s.searchQuery = query
	lower := strings.ToLower(q)
	for i := range all {
		if strings.Contains(strings.ToLower(all[i].Title), lower) {
			match := all[i]
			s.current = &match
			s.emitSearchJump(ctx, &match)
			return true
		}
	}
	return false
}

// Reset clears the session back to the unconfigured state. It is the
// single entry point for "back to start", product switch, forced logout
// and the scheduled daily auto-logout.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqGen++
	s.endLocked(ctx)
}

// endLocked clears all state. Caller holds s.mu.
func (s *Session) endLocked(ctx context.Context) {
	if s.active {
		s.emitSessionEnd(ctx)
		s.logger.Debug("session ended", "product", s.config.ProductID, "steps_visited", len(s.history))
	}
	s.current = nil
	s.history = nil
	s.config = domain.AttendanceConfig{}
	s.active = false
	s.searchQuery = ""
}

// CurrentStep returns the step being displayed, or nil when inactive.
func (s *Session) CurrentStep() *domain.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// History returns a copy of the visited step ids, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// CanGoBack reports whether there is a transition to undo.
func (s *Session) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && len(s.history) > 1
}

// IsActive reports whether a call is in progress.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Config returns the frozen attendance configuration. The second result
// is false while the session is unconfigured.
func (s *Session) Config() (domain.AttendanceConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config, s.active
}

// SearchQuery returns the in-flight free-text search term, if any.
func (s *Session) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// Snapshot captures the session state for persistence.
func (s *Session) Snapshot() *domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &domain.SessionSnapshot{
		Config:      s.config,
		Active:      s.active,
		SearchQuery: s.searchQuery,
	}
	if s.current != nil {
		snap.CurrentStepID = s.current.ID
	}
	snap.History = make([]string, len(s.history))
	copy(snap.History, s.history)
	return snap
}

// Restore rebuilds session state from a snapshot, re-fetching the current
// step so a resumed session never shows stale content. An inactive
// snapshot restores to the unconfigured state.
func (s *Session) Restore(ctx context.Context, snap *domain.SessionSnapshot) error {
	if snap == nil || !snap.Active {
		s.Reset(ctx)
		return nil
	}

	step, err := s.steps.GetStepByID(ctx, snap.CurrentStepID, snap.Config.ProductID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqGen++
	s.current = step
	s.history = make([]string, len(snap.History))
	copy(s.history, snap.History)
	s.config = snap.Config
	s.active = true
	s.searchQuery = snap.SearchQuery
	return nil
}

// bump invalidates any in-flight lookups and returns the new generation.
func (s *Session) bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqGen++
	return s.reqGen
}

func (s *Session) emitSessionStart(ctx context.Context) {
	if s.hooks.OnSessionStart == nil {
		return
	}
	s.hooks.OnSessionStart(ctx, &domain.SessionEvent{
		EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventSessionStart},
		Config:       s.config,
		HistoryDepth: len(s.history),
	})
}

func (s *Session) emitSessionEnd(ctx context.Context) {
	if s.hooks.OnSessionEnd == nil {
		return
	}
	s.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
		EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventSessionEnd},
		Config:       s.config,
		HistoryDepth: len(s.history),
	})
}

func (s *Session) emitStepEnter(ctx context.Context, step *domain.Step) {
	if s.hooks.OnStepEnter == nil {
		return
	}
	s.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter},
		StepID:    step.ID,
		ProductID: step.ProductID,
	})
}

func (s *Session) emitStepLeave(ctx context.Context, step *domain.Step) {
	if s.hooks.OnStepLeave == nil {
		return
	}
	s.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepLeave},
		StepID:    step.ID,
		ProductID: step.ProductID,
	})
}

func (s *Session) emitDanglingRef(ctx context.Context, fromID, targetID string) {
	if s.hooks.OnDanglingRef == nil {
		return
	}
	s.hooks.OnDanglingRef(ctx, &domain.DanglingRefEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventDanglingRef},
		FromStepID: fromID,
		TargetID:   targetID,
		ProductID:  s.config.ProductID,
	})
}

func (s *Session) emitSearchJump(ctx context.Context, step *domain.Step) {
	if s.hooks.OnSearchJump == nil {
		return
	}
	s.hooks.OnSearchJump(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSearchJump},
		StepID:    step.ID,
		ProductID: step.ProductID,
	})
}
