package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callguide/roteiro/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	cfg := domain.AttendanceConfig{
		AttendanceType: domain.AttendanceAtivo,
		PersonType:     domain.PersonFisica,
		ProductID:      "prod-contract",
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(cfg, "entry")
		snap.History = append(snap.History, "next")
		snap.CurrentStepID = "next"

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.CurrentStepID, loaded.CurrentStepID)
		assert.Equal(t, snap.History, loaded.History)
		assert.Equal(t, cfg, loaded.Config)
		assert.True(t, loaded.Active)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Save Isolates Caller Mutations", func(t *testing.T) {
		snap := domain.NewSnapshot(cfg, "entry")
		require.NoError(t, store.Save(ctx, sessionID, snap))

		// Mutating the caller's copy must not leak into the store.
		snap.History = append(snap.History, "mutated")
		snap.CurrentStepID = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "entry", loaded.CurrentStepID)
		assert.Equal(t, []string{"entry"}, loaded.History)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSnapshot(cfg, "entry"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(cfg, "entry"))
		_ = store.Save(ctx, id2, domain.NewSnapshot(cfg, "entry"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunStepStoreContract verifies a StepStore implementation against the
// lookup contract. The store must already contain the seeded steps, and
// nothing else in it may collide with the ids this suite uses.
func RunStepStoreContract(t *testing.T, store StepStore, seeded []domain.Step) {
	ctx := context.Background()
	require.NotEmpty(t, seeded, "contract requires at least one seeded step")

	t.Run("GetStepByID", func(t *testing.T) {
		for _, want := range seeded {
			got, err := store.GetStepByID(ctx, want.ID, "")
			require.NoError(t, err, "lookup of seeded step %s", want.ID)
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.Title, got.Title)
			assert.Len(t, got.Buttons, len(want.Buttons))
		}
	})

	t.Run("Product Scoping", func(t *testing.T) {
		for _, want := range seeded {
			if want.ProductID == "" {
				continue
			}
			// Scoped to the owning product: resolves.
			got, err := store.GetStepByID(ctx, want.ID, want.ProductID)
			require.NoError(t, err)
			assert.Equal(t, want.ID, got.ID)

			// Scoped to a foreign product: must not resolve.
			_, err = store.GetStepByID(ctx, want.ID, "other-product-"+want.ProductID)
			assert.ErrorIs(t, err, domain.ErrStepNotFound)
		}
	})

	t.Run("Not Found Sentinel", func(t *testing.T) {
		_, err := store.GetStepByID(ctx, "definitely-does-not-exist", "")
		assert.ErrorIs(t, err, domain.ErrStepNotFound)
	})

	t.Run("ListSteps", func(t *testing.T) {
		all, err := store.ListSteps(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), len(seeded))

		ids := make(map[string]bool, len(all))
		for _, s := range all {
			ids[s.ID] = true
		}
		for _, want := range seeded {
			assert.True(t, ids[want.ID], "ListSteps should contain %s", want.ID)
		}
	})
}
