package ports

import (
	"context"

	"github.com/callguide/roteiro/pkg/domain"
)

// SessionStore defines the interface for persisting session snapshots.
// This lets a server resume operator sessions across restarts; the core
// engine itself never requires persistence.
type SessionStore interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, snap *domain.SessionSnapshot) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
