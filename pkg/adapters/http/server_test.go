package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/docflows"
	api "github.com/aretw0/docflows/pkg/adapters/http"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/observability"
	"github.com/aretw0/docflows/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler http.Handler
	reports *registry.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := docflows.New(context.Background(), docflows.WithObserver(metrics))
	require.NoError(t, err)

	reports := registry.NewRegistry()
	return fixture{
		handler: api.NewHandler(eng, api.WithRegistry(reports), api.WithMetrics(reg)),
		reports: reports,
	}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (f fixture) create(t *testing.T, body string) api.ReportResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/reports", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.ReportResponse](t, w)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestWorkflows(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/workflows", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]api.WorkflowResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "ReportWorkflow", list[0].Name)
	assert.Equal(t, "draft", list[0].InitialState)
	assert.Equal(t, []string{"done"}, list[0].Unreachable)

	w = f.do(t, http.MethodGet, "/workflows/ReportWorkflow", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[api.WorkflowResponse](t, w).Transitions, 6)

	w = f.do(t, http.MethodGet, "/workflows/Nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowGraph(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, `{"workflow":"ReportWorkflow","title":"Quarterly"}`)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/reports/"+created.ID+"/transitions/prepare", "").Code)

	w := f.do(t, http.MethodGet, "/workflows/ReportWorkflow/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.NotContains(t, w.Body.String(), "classDef")

	w = f.do(t, http.MethodGet, "/workflows/ReportWorkflow/graph?report="+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class draft visited;")
	assert.Contains(t, w.Body.String(), "class ready current;")

	w = f.do(t, http.MethodGet, "/workflows/ReportWorkflow/graph?report=missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportLifecycle(t *testing.T) {
	f := newFixture(t)

	created := f.create(t, `{"workflow":"ReportWorkflow","title":"Hi"}`)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "draft", created.State.Name)
	assert.Equal(t, []string{"prepare"}, created.Available)

	fire := func(transition, body string) *httptest.ResponseRecorder {
		return f.do(t, http.MethodPost, "/reports/"+created.ID+"/transitions/"+transition, body)
	}

	require.Equal(t, http.StatusOK, fire("prepare", `{"actor":"alice"}`).Code)

	w := fire("finish", `{"actor":"alice"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Content is empty", decode[api.ErrorResponse](t, w).Error)

	w = f.do(t, http.MethodPatch, "/reports/"+created.ID, `{"title":"Quarterly results","content":"Revenue is up."}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Quarterly results", decode[api.ReportResponse](t, w).Title)

	require.Equal(t, http.StatusOK, fire("finish", `{"actor":"alice"}`).Code)
	require.Equal(t, http.StatusOK, fire("submit", `{"actor":"bob","user":"carol"}`).Code)

	w = fire("finish", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = fire("approve", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.ReportResponse](t, w)
	assert.Equal(t, "approved", got.State.Name)
	assert.Equal(t, []string{"alice: prepare", "alice: finish", "carol: submit", domain.UnknownActor + ": approve"}, got.History)

	w = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `docflows_transitions_total{outcome="guard_failed",transition="finish",workflow="ReportWorkflow"} 1`)
}

func TestReports_ListGetDelete(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, `{"workflow":"ReportWorkflow","title":"First report","keywords":["x"],"attributes":{"owner":"ann"}}`)
	f.create(t, `{"workflow":"ReportWorkflow","title":"Second report","content":"body"}`)

	w := f.do(t, http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]api.ReportResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, []string{"x"}, list[0].Keywords)
	assert.Equal(t, "ann", list[0].Attributes["owner"])

	w = f.do(t, http.MethodGet, "/reports/"+a.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/reports/"+a.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/reports/"+a.ID, "").Code)
	assert.Len(t, f.reports.List(), 1)
}

func TestCreateReport_BadRequests(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/reports", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/reports", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/reports", `{"workflow":"Nope","title":"x"}`).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrReportNotFound, http.StatusNotFound},
		{&domain.InvalidTransitionError{Transition: "a", State: "b"}, http.StatusConflict},
		{domain.ErrReentrantTransition, http.StatusConflict},
		{&domain.GuardFailedError{Guard: "g"}, http.StatusUnprocessableEntity},
		{&domain.AllGuardsFailedError{Transition: "t"}, http.StatusUnprocessableEntity},
		{&domain.UnknownGuardError{Name: "g"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, api.StatusFor(tt.err), tt.err.Error())
	}
}
