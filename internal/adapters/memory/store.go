// Package memory provides in-process implementations of the engine's
// storage ports, used by tests and the prototype fallback mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/callguide/roteiro/pkg/domain"
)

// Store implements ports.StepStore, ports.ProductResolver and
// ports.StoreWatcher over plain maps. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	steps    map[string]domain.Step
	products map[string]domain.Product
	watchers []chan struct{}
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		steps:    make(map[string]domain.Step),
		products: make(map[string]domain.Product),
	}
}

// NewStoreFromRecords creates a store pre-seeded with the given records.
func NewStoreFromRecords(steps []domain.Step, products []domain.Product) *Store {
	s := NewStore()
	for _, step := range steps {
		s.steps[step.ID] = step
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// GetStepByID retrieves a step, optionally scoped to a product.
func (s *Store) GetStepByID(ctx context.Context, id, productID string) (*domain.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	step, ok := s.steps[id]
	if !ok {
		return nil, domain.ErrStepNotFound
	}
	if productID != "" && step.ProductID != "" && step.ProductID != productID {
		return nil, domain.ErrStepNotFound
	}
	out := step
	return &out, nil
}

// ListSteps returns all steps ordered by Order then ID, so title search
// and listings are deterministic.
func (s *Store) ListSteps(ctx context.Context) ([]domain.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Step, 0, len(s.steps))
	for _, step := range s.steps {
		out = append(out, step)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetProductByID resolves a product.
func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := p
	return &out, nil
}

// ListProducts returns all products ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutStep inserts or replaces a step and notifies watchers.
func (s *Store) PutStep(ctx context.Context, step domain.Step) error {
	s.mu.Lock()
	s.steps[step.ID] = step
	s.mu.Unlock()
	s.broadcast()
	return nil
}

// PutProduct inserts or replaces a product and notifies watchers.
func (s *Store) PutProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
	s.broadcast()
	return nil
}

// RemoveStep deletes a step and notifies watchers. Removing a step that
// other buttons still point at produces dangling references; the session
// degrades those to no-ops.
func (s *Store) RemoveStep(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.steps, id)
	s.mu.Unlock()
	s.broadcast()
	return nil
}

// Watch returns a channel signaled on every admin mutation. The channel
// is closed when ctx is canceled.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// broadcast signals every watcher without blocking on slow consumers.
func (s *Store) broadcast() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}
