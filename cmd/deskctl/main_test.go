package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fakeEngine serves canned engine answers and records request bodies.
type fakeEngine struct {
	bodies map[string][]map[string]interface{}
}

func newFakeEngine(t *testing.T) (*fakeEngine, *httptest.Server) {
	f := &fakeEngine{bodies: map[string][]map[string]interface{}{}}
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "System Operational", "model": "Black-Litterman ML"})
	})
	mux.HandleFunc("/recommendation/scenario", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"date":    "2020-03-16",
			"regime":  map[string]interface{}{"volatility": "high"},
			"weights": map[string]float64{"XLV": 0.6, "XLP": 0.4},
			"metrics": map[string]float64{"expected_return": 0.07, "volatility": 0.21},
		})
	})
	mux.HandleFunc("/simulation/monte_carlo", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"days": []float64{0, 1},
			"p05":  []float64{10000, 9100},
			"p25":  []float64{10000, 9700},
			"p50":  []float64{10000, 10400},
			"p75":  []float64{10000, 11000},
			"p95":  []float64{10000, 12100},
		})
	})
	mux.HandleFunc("/simulation/backtest", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"dates":     []string{"2008-01-02", "2008-12-31"},
			"portfolio": []float64{10000, 8123.4},
			"spy":       []float64{10000, 6300},
			"metrics": map[string]float64{
				"total_return": -0.19, "spy_total_return": -0.37,
				"sharpe": -0.6, "spy_sharpe": -1.1,
				"max_dd": -0.25, "spy_max_dd": -0.5,
				"volatility": 0.2, "spy_volatility": 0.4,
			},
			"yearly_table": []map[string]interface{}{
				{"year": 2008, "portfolio": -0.19, "spy": -0.37, "diff": 0.18, "top_holdings": "XLP(40%), XLV(30%)"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--engine-url", srv.URL}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestScenarioCommand_Flags(t *testing.T) {
	engine, srv := newFakeEngine(t)

	out, err := run(t, srv, "scenario", "--view", "xlk:0.05", "--pair", "XLV:XLY:0.04:0.6", "--as-of", "2020-03-16")
	require.NoError(t, err)
	assert.Contains(t, out, "Healthcare")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "High")

	require.Len(t, engine.bodies["/recommendation/scenario"], 1)
	body := engine.bodies["/recommendation/scenario"][0]
	assert.Equal(t, "2020-03-16", body["date"])
	sent := body["views"].([]interface{})
	require.Len(t, sent, 3)
	first := sent[0].(map[string]interface{})
	assert.Equal(t, "XLK", first["ticker"])
	assert.Equal(t, 0.5, first["confidence"])
}

func TestScenarioCommand_File(t *testing.T) {
	engine, srv := newFakeEngine(t)

	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
template: recession
views:
  - ticker: XLE
    value: 0.1
    confidence: 0.7
pairs:
  - {asset_a: XLU, asset_b: XLK, diff: 0.02}
`), 0o644))

	out, err := run(t, srv, "scenario", "-f", path, "--format", "json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "high", decoded["regime"])

	body := engine.bodies["/recommendation/scenario"][0]
	assert.Nil(t, body["date"])
	assert.Len(t, body["views"], 5)
}

func TestScenarioCommand_Errors(t *testing.T) {
	_, srv := newFakeEngine(t)

	_, err := run(t, srv, "scenario", "--view", "SPY:0.05")
	assert.Error(t, err)

	_, err = run(t, srv, "scenario", "--template", "moonshot")
	assert.Error(t, err)

	_, err = run(t, srv, "scenario", "--as-of", "2999-01-01")
	assert.Error(t, err)

	_, err = run(t, srv, "scenario", "--format", "xml")
	assert.Error(t, err)
}

func TestMonteCarloCommand(t *testing.T) {
	engine, srv := newFakeEngine(t)

	out, err := run(t, srv, "montecarlo", "--template", "inflation", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "12100")
	assert.Contains(t, out, "5000")

	mc := engine.bodies["/simulation/monte_carlo"][0]
	assert.Equal(t, 0.07, mc["mu"])
	assert.Equal(t, 0.21, mc["sigma"])
	assert.Equal(t, 2.0, mc["days"])
}

func TestBacktestCommand(t *testing.T) {
	engine, srv := newFakeEngine(t)

	out, err := run(t, srv, "backtest", "--view", "XLF:-0.1:0.9:2008-01-01:2009-06-30", "--start", "2008-01-01", "--end", "2008-12-31", "--format", "yaml")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "growth")

	body := engine.bodies["/simulation/backtest"][0]
	assert.Equal(t, "2008-01-01", body["start_date"])
	assert.Equal(t, "2008-12-31", body["end_date"])
	view := body["views"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2009-06-30", view["end_date"])
}

func TestBacktestCommand_Table(t *testing.T) {
	_, srv := newFakeEngine(t)

	out, err := run(t, srv, "backtest")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Return *")
	assert.Contains(t, out, "+18.0%")
	assert.Contains(t, out, "XLP(40%), XLV(30%)")
	assert.Contains(t, out, "8123")
}

func TestBacktestCommand_RejectsPairs(t *testing.T) {
	_, srv := newFakeEngine(t)
	_, err := run(t, srv, "backtest", "--pair", "XLK:XLE:0.05")
	assert.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	_, srv := newFakeEngine(t)
	out, err := run(t, srv, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "System Operational")
}

func TestParseSingle(t *testing.T) {
	v, err := parseSingle("xlf:-0.1:0.9:2008-01-01:2009-06-30")
	require.NoError(t, err)
	assert.Equal(t, "XLF", string(v.Ticker))
	assert.Equal(t, -0.1, v.Value)
	assert.Equal(t, "2009-06-30", v.EndDate.String())

	for _, bad := range []string{"XLK", "XLK:abc", "XLK:0.1:0.5:2008-01-01", "XLK:0.1:x"} {
		_, err := parseSingle(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePair(t *testing.T) {
	p, err := parsePair("XLV:XLY:0.04")
	require.NoError(t, err)
	assert.Nil(t, p.Confidence)
	assert.Equal(t, 0.5, p.draft().Confidence)

	_, err = parsePair("XLV:XLY")
	assert.Error(t, err)
}
