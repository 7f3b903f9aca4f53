package ports

import (
	"context"

	"github.com/callguide/roteiro/pkg/domain"
)

// StepStore defines how the engine resolves script steps. Implementations
// may be backed by a database or an in-process map; the engine treats every
// lookup as possibly latent and never caches results itself.
type StepStore interface {
	// GetStepByID retrieves a step by id. A non-empty productID restricts
	// the lookup to steps belonging to that product before matching by id,
	// which prevents collisions across products sharing ids.
	// Returns domain.ErrStepNotFound if the step does not exist.
	GetStepByID(ctx context.Context, id, productID string) (*domain.Step, error)

	// ListSteps returns all currently loaded steps. Used for free-text
	// title search and for administrative graph validation.
	ListSteps(ctx context.Context) ([]domain.Step, error)
}

// ProductResolver translates a configuration selection into a Product,
// which references the entry step of its script graph.
type ProductResolver interface {
	// GetProductByID returns domain.ErrProductNotFound for unknown ids.
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
}

// StoreWatcher is implemented by step stores that can notify about backend
// changes. Long-lived UIs that cache step lists subscribe to refresh; the
// navigation session never does, it re-fetches on demand instead.
type StoreWatcher interface {
	// Watch returns a channel signaled when the underlying step set changes.
	// It abstracts away the specific event details, signaling only that a
	// reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
