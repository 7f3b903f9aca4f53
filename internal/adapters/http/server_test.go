package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/callguide/roteiro/internal/adapters/http"
	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/internal/logging"
	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewStoreFromRecords([]domain.Step{
		{
			ID:    "hab_abordagem",
			Title: "Abordagem Inicial",
			Buttons: []domain.Button{
				{ID: "b1", Label: "É O CLIENTE", NextStepID: "hab_identificacao"},
				{ID: "b2", Label: "ENCERRAR", NextStepID: ""},
			},
			ProductID: "prod-habitacional",
		},
		{ID: "hab_identificacao", Title: "Identificação", ProductID: "prod-habitacional"},
	}, []domain.Product{
		{
			ID:              "prod-habitacional",
			Name:            "Crédito Habitacional",
			ScriptID:        "hab_abordagem",
			AttendanceTypes: []domain.AttendanceType{domain.AttendanceAtivo},
			PersonTypes:     []domain.PersonType{domain.PersonFisica},
			IsActive:        true,
		},
	})

	mgr := session.NewManager(store, store, memory.NewSessionStore())
	handler := httpadapter.NewHandler(mgr, logging.NewNop())

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

type sessionView struct {
	SessionID   string       `json:"session_id"`
	Active      bool         `json:"active"`
	CurrentStep *domain.Step `json:"current_step"`
	History     []string     `json:"history"`
	CanGoBack   bool         `json:"can_go_back"`
	SearchQuery string       `json:"search_query"`
	Found       *bool        `json:"found"`
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, sessionView) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var view sessionView
	if resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	}
	return resp, view
}

func startSession(t *testing.T, srv *httptest.Server) sessionView {
	t.Helper()
	resp, view := doJSON(t, http.MethodPost, srv.URL+"/sessions", map[string]string{
		"attendance_type": "ativo",
		"person_type":     "fisica",
		"product_id":      "prod-habitacional",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, view.SessionID)
	return view
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StartSession(t *testing.T) {
	srv := newTestServer(t)

	view := startSession(t, srv)
	assert.True(t, view.Active)
	assert.Equal(t, []string{"hab_abordagem"}, view.History)
	assert.False(t, view.CanGoBack)
}

func TestServer_StartSession_UnknownProduct(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/sessions", map[string]string{
		"attendance_type": "ativo",
		"person_type":     "fisica",
		"product_id":      "prod-ghost",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_StartSession_BadBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/sessions", "application/json", bytes.NewBufferString("{bad"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_NavigationFlow(t *testing.T) {
	srv := newTestServer(t)
	view := startSession(t, srv)
	base := fmt.Sprintf("%s/sessions/%s", srv.URL, view.SessionID)

	// Advance to the identification step.
	resp, view2 := doJSON(t, http.MethodPost, base+"/advance", map[string]string{
		"next_step_id": "hab_identificacao",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"hab_abordagem", "hab_identificacao"}, view2.History)
	assert.True(t, view2.CanGoBack)

	// GET resolves the full current step.
	resp, current := doJSON(t, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, current.CurrentStep)
	assert.Equal(t, "Identificação", current.CurrentStep.Title)

	// Back to the entry step.
	resp, view3 := doJSON(t, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"hab_abordagem"}, view3.History)
	assert.False(t, view3.CanGoBack)
}

func TestServer_TerminalAdvanceEndsSession(t *testing.T) {
	srv := newTestServer(t)
	view := startSession(t, srv)
	base := fmt.Sprintf("%s/sessions/%s", srv.URL, view.SessionID)

	resp, ended := doJSON(t, http.MethodPost, base+"/advance", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, ended.Active)

	// The record is gone afterwards.
	resp, _ = doJSON(t, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Search(t *testing.T) {
	srv := newTestServer(t)
	view := startSession(t, srv)
	base := fmt.Sprintf("%s/sessions/%s", srv.URL, view.SessionID)

	resp, hit := doJSON(t, http.MethodPost, base+"/search", map[string]string{"query": "identifica"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, hit.Found)
	assert.True(t, *hit.Found)
	assert.Equal(t, "identifica", hit.SearchQuery)
	assert.Equal(t, []string{"hab_abordagem"}, hit.History, "search jumps do not extend history")

	resp, miss := doJSON(t, http.MethodPost, base+"/search", map[string]string{"query": "nada"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, miss.Found)
	assert.False(t, *miss.Found)
}

func TestServer_Reset(t *testing.T) {
	srv := newTestServer(t)
	view := startSession(t, srv)
	base := fmt.Sprintf("%s/sessions/%s", srv.URL, view.SessionID)

	resp, _ := doJSON(t, http.MethodDelete, base+"/", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownSession(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/sessions/nope/advance", map[string]string{
		"next_step_id": "hab_identificacao",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
