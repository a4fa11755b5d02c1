package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	scenarioErr error
	fanLength   int
	lastPayload domain.ScenarioPayload
}

func (s *stubEngine) Scenario(_ context.Context, p domain.ScenarioPayload) (*domain.AllocationResult, error) {
	s.lastPayload = p
	if s.scenarioErr != nil {
		return nil, s.scenarioErr
	}
	return &domain.AllocationResult{
		Date:    "2025-05-30",
		Regime:  map[string]any{"volatility": "high"},
		Weights: map[domain.Ticker]float64{domain.XLU: 0.7, domain.XLP: 0.3},
		Metrics: domain.AllocationMetrics{ExpectedReturn: 0.06, Volatility: 0.2},
	}, nil
}

func (s *stubEngine) MonteCarlo(_ context.Context, r domain.ProjectionRequest) (*domain.ProjectionResult, error) {
	n := s.fanLength
	if n == 0 {
		n = 3
	}
	out := &domain.ProjectionResult{}
	for i := 0; i < n; i++ {
		out.Days = append(out.Days, float64(i))
		out.P05 = append(out.P05, 9000)
		out.P25 = append(out.P25, 9500)
		out.P50 = append(out.P50, 10000)
		out.P75 = append(out.P75, 10500)
		out.P95 = append(out.P95, 11000)
	}
	if s.fanLength < 0 {
		out.P50 = nil
	}
	return out, nil
}

func (s *stubEngine) Backtest(_ context.Context, r domain.BacktestRequest) (*domain.BacktestResult, error) {
	return &domain.BacktestResult{
		Dates:     []string{r.StartDate.String()},
		Portfolio: []float64{10000},
		SPY:       []float64{10000},
	}, nil
}

type testAPI struct {
	engine  *stubEngine
	manager *desk.Manager
	router  chi.Router
}

func newTestAPI() *testAPI {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	engine := &stubEngine{}
	manager := desk.NewManager(engine, desk.Options{MonteCarloDays: 3}, time.Hour, nil, logger)
	handler := NewHandler(manager, []string{"*"}, logger)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return &testAPI{engine: engine, manager: manager, router: router}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func (a *testAPI) createSession(t *testing.T) string {
	t.Helper()
	w, resp := a.do(t, http.MethodPost, "/api/sessions/", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func errorCode(resp map[string]interface{}) string {
	e, _ := resp["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func TestRegisterRoutes(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(desk.NewManager(&stubEngine{}, desk.Options{}, 0, nil, logger), nil, logger)

	router := chi.NewRouter()
	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI()
	id := api.createSession(t)
	assert.Equal(t, 1, api.manager.Len())

	w, resp := api.do(t, http.MethodGet, "/api/sessions/"+id+"/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, resp, "data")
	assert.Contains(t, resp, "metadata")

	w, _ = api.do(t, http.MethodDelete, "/api/sessions/"+id+"/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, resp = api.do(t, http.MethodGet, "/api/sessions/"+id+"/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeSessionNotFound, errorCode(resp))
}

func TestUnknownSessionID(t *testing.T) {
	api := newTestAPI()
	for _, path := range []string{"/api/sessions/not-a-uuid/", "/api/sessions/7b7f1b2e-6a4c-4bb0-9a5e-1f1d5c3f7a10/"} {
		w, resp := api.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, CodeSessionNotFound, errorCode(resp), path)
	}
}

func TestAddViewsAndRunScenario(t *testing.T) {
	api := newTestAPI()
	id := api.createSession(t)
	base := "/api/sessions/" + id

	w, _ := api.do(t, http.MethodPost, base+"/views/single", map[string]interface{}{"ticker": "xlu", "value": 0.04, "confidence": 0.7})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := api.do(t, http.MethodPost, base+"/views/pair", map[string]interface{}{"asset_a": "XLP", "asset_b": "XLY", "diff": 0.06})
	require.Equal(t, http.StatusOK, w.Code)
	state := resp["data"].(map[string]interface{})
	assert.Len(t, state["views"], 3)

	w, _ = api.do(t, http.MethodPut, base+"/as-of", map[string]interface{}{"date": "2020-03-16"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = api.do(t, http.MethodPost, base+"/scenario", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := resp["data"].(map[string]interface{})
	assert.Equal(t, "High", summary["risk_level"])
	assert.Equal(t, "high", summary["regime"])

	assert.Equal(t, domain.MustDate("2020-03-16"), api.engine.lastPayload.Date)
	require.Len(t, api.engine.lastPayload.Views, 3)
	assert.Equal(t, domain.XLU, api.engine.lastPayload.Views[0].Ticker)
	assert.InDelta(t, 0.03, api.engine.lastPayload.Views[1].Value, 1e-12)
	assert.InDelta(t, 0.5, api.engine.lastPayload.Views[1].Confidence, 1e-12)
}

func TestValidationErrors(t *testing.T) {
	api := newTestAPI()
	id := api.createSession(t)
	base := "/api/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		code   string
	}{
		{"unknown ticker", http.MethodPost, "/views/single", map[string]interface{}{"ticker": "SPY"}, string(domain.CodeUnknownTicker)},
		{"unknown pair ticker", http.MethodPost, "/views/pair", map[string]interface{}{"asset_a": "XLK", "asset_b": "QQQ"}, string(domain.CodeUnknownTicker)},
		{"unknown template", http.MethodPost, "/views/template", map[string]interface{}{"key": "moonshot"}, string(domain.CodeUnknownTemplate)},
		{"remove out of range", http.MethodDelete, "/views/0", nil, string(domain.CodeIndexOutOfRange)},
		{"remove non-integer", http.MethodDelete, "/views/first", nil, string(domain.CodeIndexOutOfRange)},
		{"bad date", http.MethodPut, "/as-of", map[string]interface{}{"date": "16/03/2020"}, string(domain.CodeInvalidDate)},
		{"future date", http.MethodPut, "/as-of", map[string]interface{}{"date": "2999-01-01"}, string(domain.CodeFutureDate)},
		{"inverted view dates", http.MethodPost, "/backtest/views", map[string]interface{}{"ticker": "XLF", "start_date": "2010-01-01", "end_date": "2009-01-01"}, string(domain.CodeInvalidDateRange)},
		{"inverted period", http.MethodPut, "/backtest/period", map[string]interface{}{"start_date": "2020-01-01", "end_date": "2019-01-01"}, string(domain.CodeInvalidDateRange)},
		{"broken json", http.MethodPost, "/views/single", "{", CodeInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := api.do(t, tt.method, base+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(resp))
		})
	}
}

func TestEmptyTemplateIsNoop(t *testing.T) {
	api := newTestAPI()
	base := "/api/sessions/" + api.createSession(t)

	w, resp := api.do(t, http.MethodPost, base+"/views/template", map[string]interface{}{"key": ""})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["data"].(map[string]interface{})["views"])
}

func TestMonteCarloBeforeScenario(t *testing.T) {
	api := newTestAPI()
	base := "/api/sessions/" + api.createSession(t)

	w, resp := api.do(t, http.MethodPost, base+"/montecarlo", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeNoAllocation, errorCode(resp))
}

func TestMonteCarlo(t *testing.T) {
	api := newTestAPI()
	base := "/api/sessions/" + api.createSession(t)
	w, _ := api.do(t, http.MethodPost, base+"/scenario", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := api.do(t, http.MethodPost, base+"/montecarlo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := resp["data"].(map[string]interface{})
	assert.Len(t, p["points"], 3)
	terminal := p["terminal"].(map[string]interface{})
	assert.Equal(t, 10000.0, terminal["median"])

	api.engine.fanLength = -1
	w, resp = api.do(t, http.MethodPost, base+"/montecarlo", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, CodeMalformedResponse, errorCode(resp))
}

func TestEngineErrors(t *testing.T) {
	api := newTestAPI()
	base := "/api/sessions/" + api.createSession(t)

	api.engine.scenarioErr = &domain.ServiceError{Endpoint: "/recommendation/scenario", Status: 400, Detail: "No data for date"}
	w, resp := api.do(t, http.MethodPost, base+"/scenario", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, CodeEngineError, errorCode(resp))
	assert.Contains(t, resp["error"].(map[string]interface{})["message"], "No data for date")

	api.engine.scenarioErr = &domain.NetworkError{Endpoint: "/recommendation/scenario", Err: context.DeadlineExceeded}
	w, resp = api.do(t, http.MethodPost, base+"/scenario", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, CodeEngineUnreachable, errorCode(resp))
}

func TestBacktestFlow(t *testing.T) {
	api := newTestAPI()
	base := "/api/sessions/" + api.createSession(t)

	w, _ := api.do(t, http.MethodPost, base+"/backtest/views", map[string]interface{}{
		"ticker": "XLF", "value": -0.1, "confidence": 0.9, "start_date": "2008-01-01", "end_date": "2009-06-30",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodPut, base+"/backtest/period", map[string]interface{}{"start_date": "2007-01-01", "end_date": "2012-12-31"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := api.do(t, http.MethodPost, base+"/backtest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	growth := resp["data"].(map[string]interface{})["growth"].([]interface{})
	require.Len(t, growth, 1)
	assert.Equal(t, "2007-01-01", growth[0].(map[string]interface{})["date"])

	w, resp = api.do(t, http.MethodDelete, base+"/backtest/views/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bt := resp["data"].(map[string]interface{})["backtest"].(map[string]interface{})
	assert.Empty(t, bt["views"])
}

func TestWriteFailure_Stale(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	h := NewHandler(nil, nil, logger)
	w := httptest.NewRecorder()

	h.writeFailure(w, domain.ErrStaleResponse)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), CodeStaleResponse))
}
