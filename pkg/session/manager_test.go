package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/session"
)

func newManager(t *testing.T) (*session.Manager, *memory.SessionStore) {
	t.Helper()
	store := habitacionalStore()
	sessions := memory.NewSessionStore()
	return session.NewManager(store, store, sessions), sessions
}

func TestManager_StartSession(t *testing.T) {
	ctx := context.Background()
	mgr, sessions := newManager(t)

	id, snap, err := mgr.StartSession(ctx, habitacionalConfig())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, "hab_abordagem", snap.CurrentStepID)
	assert.Equal(t, []string{"hab_abordagem"}, snap.History)
	assert.True(t, snap.Active)

	// The snapshot was written through to the store.
	stored, err := sessions.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hab_abordagem", stored.CurrentStepID)
}

func TestManager_StartSession_ConfigurationErrorLeavesNothing(t *testing.T) {
	ctx := context.Background()
	mgr, sessions := newManager(t)

	_, _, err := mgr.StartSession(ctx, domain.AttendanceConfig{
		AttendanceType: domain.AttendanceAtivo,
		PersonType:     domain.PersonFisica,
		ProductID:      "prod-ghost",
	})

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	ids, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// brokenSaveStore simulates a snapshot backend outage: every Save fails.
type brokenSaveStore struct {
	*memory.SessionStore
}

func (s *brokenSaveStore) Save(ctx context.Context, sessionID string, snap *domain.SessionSnapshot) error {
	return errors.New("snapshot backend unavailable")
}

func TestManager_StartSession_SaveFailureTearsDownSession(t *testing.T) {
	ctx := context.Background()
	store := habitacionalStore()
	sessions := &brokenSaveStore{SessionStore: memory.NewSessionStore()}

	starts, ends := 0, 0
	mgr := session.NewManager(store, store, sessions,
		session.WithManagerHooks(domain.LifecycleHooks{
			OnSessionStart: func(context.Context, *domain.SessionEvent) { starts++ },
			OnSessionEnd:   func(context.Context, *domain.SessionEvent) { ends++ },
		}),
	)

	id, snap, err := mgr.StartSession(ctx, habitacionalConfig())
	require.Error(t, err)
	assert.Empty(t, id)
	assert.Nil(t, snap)

	// The caller got no ID back, so nothing may stay alive behind its
	// back: the session is ended and the hooks balance out.
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, ends)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_AdvanceAndGoBack(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	id, _, err := mgr.StartSession(ctx, habitacionalConfig())
	require.NoError(t, err)

	snap, err := mgr.Advance(ctx, id, "hab_identificacao")
	require.NoError(t, err)
	assert.Equal(t, "hab_identificacao", snap.CurrentStepID)
	assert.Equal(t, []string{"hab_abordagem", "hab_identificacao"}, snap.History)

	snap, err = mgr.GoBack(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hab_abordagem", snap.CurrentStepID)
	assert.Equal(t, []string{"hab_abordagem"}, snap.History)
}

func TestManager_Advance_TerminalDeletesRecord(t *testing.T) {
	ctx := context.Background()
	mgr, sessions := newManager(t)

	id, _, err := mgr.StartSession(ctx, habitacionalConfig())
	require.NoError(t, err)

	snap, err := mgr.Advance(ctx, id, "")
	require.NoError(t, err)
	assert.False(t, snap.Active)

	_, err = sessions.Load(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "ended sessions must not linger in the store")
}

func TestManager_UnknownSession(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	_, err := mgr.Advance(ctx, "no-such-session", "hab_identificacao")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = mgr.Current(ctx, "no-such-session")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_Search(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	id, _, err := mgr.StartSession(ctx, habitacionalConfig())
	require.NoError(t, err)

	snap, found, err := mgr.Search(ctx, id, "oferta")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hab_oferta", snap.CurrentStepID)
	assert.Equal(t, "oferta", snap.SearchQuery)
	assert.Equal(t, []string{"hab_abordagem"}, snap.History)

	snap, found, err = mgr.Search(ctx, id, "nada disso")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "hab_oferta", snap.CurrentStepID)
}

func TestManager_RehydratesFromStore(t *testing.T) {
	ctx := context.Background()
	store := habitacionalStore()
	sessions := memory.NewSessionStore()

	mgr := session.NewManager(store, store, sessions)
	id, _, err := mgr.StartSession(ctx, habitacionalConfig())
	require.NoError(t, err)
	_, err = mgr.Advance(ctx, id, "hab_identificacao")
	require.NoError(t, err)

	// A fresh manager over the same store simulates a server restart.
	restarted := session.NewManager(store, store, sessions)
	snap, step, err := restarted.Current(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hab_identificacao", snap.CurrentStepID)
	require.NotNil(t, step)
	assert.Equal(t, "Identificação", step.Title)

	// And the rehydrated session keeps navigating.
	snap, err = restarted.GoBack(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hab_abordagem", snap.CurrentStepID)
}

func TestManager_ResetAll(t *testing.T) {
	ctx := context.Background()
	mgr, sessions := newManager(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, _, err := mgr.StartSession(ctx, habitacionalConfig())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, mgr.ResetAll(ctx))

	for _, id := range ids {
		_, err := sessions.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	}
	remaining, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
