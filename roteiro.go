package roteiro

import (
	"context"
	"io"
	"log/slog"

	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/importer"
	"github.com/callguide/roteiro/pkg/ports"
	"github.com/callguide/roteiro/pkg/session"
)

// Version is the library version, set at build time for released binaries.
var Version = "dev"

// Engine is the high-level entry point for embedding roteiro as a library.
// It wraps the session manager and provides a simplified API for consumers
// that do not need to assemble the ports themselves.
type Engine struct {
	manager  *session.Manager
	steps    ports.StepStore
	products ports.ProductResolver
	store    ports.SessionStore
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStepStore injects a custom StepStore, bypassing the default in-memory one.
// The store must also implement ports.ProductResolver unless WithProductResolver
// is given as well.
func WithStepStore(s ports.StepStore) Option {
	return func(e *Engine) {
		e.steps = s
	}
}

// WithProductResolver injects a custom ProductResolver.
func WithProductResolver(r ports.ProductResolver) Option {
	return func(e *Engine) {
		e.products = r
	}
}

// WithSessionStore injects a custom SessionStore for snapshot persistence.
func WithSessionStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new roteiro Engine from a script document.
//
// data holds the steps and products in the given format (importer.FormatJSON
// or importer.FormatYAML); entries that fail validation are quarantined and
// reported back, not loaded. Pass nil data when a custom StepStore is
// injected via options.
func New(data []byte, format importer.Format, opts ...Option) (*Engine, *importer.Report, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	var report *importer.Report
	if eng.steps == nil {
		var err error
		report, err = importer.New().Parse(data, format)
		if err != nil {
			return nil, nil, err
		}
		mem := memory.NewStoreFromRecords(report.Steps, report.Products)
		eng.steps = mem
		if eng.products == nil {
			eng.products = mem
		}
	}
	if eng.products == nil {
		if r, ok := eng.steps.(ports.ProductResolver); ok {
			eng.products = r
		}
	}
	if eng.store == nil {
		eng.store = memory.NewSessionStore()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.manager = session.NewManager(eng.steps, eng.products, eng.store,
		session.WithManagerHooks(eng.hooks),
		session.WithManagerLogger(eng.logger),
	)

	return eng, report, nil
}

// StartSession creates a new navigation session for the given configuration
// and returns its ID along with the initial snapshot.
func (e *Engine) StartSession(ctx context.Context, cfg domain.AttendanceConfig) (string, *domain.SessionSnapshot, error) {
	return e.manager.StartSession(ctx, cfg)
}

// Advance follows the button leading to nextStepID. An empty nextStepID ends
// the session.
func (e *Engine) Advance(ctx context.Context, sessionID, nextStepID string) (*domain.SessionSnapshot, error) {
	return e.manager.Advance(ctx, sessionID, nextStepID)
}

// GoBack returns the session to the previously displayed step, if any.
func (e *Engine) GoBack(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	return e.manager.GoBack(ctx, sessionID)
}

// Search jumps the session to the first step whose title matches query.
// The boolean reports whether a match was found.
func (e *Engine) Search(ctx context.Context, sessionID, query string) (*domain.SessionSnapshot, bool, error) {
	return e.manager.Search(ctx, sessionID, query)
}

// Current returns the session snapshot and the step it is displaying.
func (e *Engine) Current(ctx context.Context, sessionID string) (*domain.SessionSnapshot, *domain.Step, error) {
	return e.manager.Current(ctx, sessionID)
}

// Reset ends the session and clears its state.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.manager.Reset(ctx, sessionID)
}

// Manager exposes the underlying session manager for advanced wiring.
func (e *Engine) Manager() *session.Manager {
	return e.manager
}

// Steps returns the underlying StepStore used by the engine.
func (e *Engine) Steps() ports.StepStore {
	return e.steps
}
