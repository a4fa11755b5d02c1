package domain

import (
	"encoding/json"
	"fmt"
)

// ScenarioPayload is the body of POST /recommendation/scenario.
type ScenarioPayload struct {
	Views []View
	Date  Date
}

// MarshalJSON always emits views as an array and date as a string or null.
func (p ScenarioPayload) MarshalJSON() ([]byte, error) {
	views := p.Views
	if views == nil {
		views = []View{}
	}
	return json.Marshal(struct {
		Views []View `json:"views"`
		Date  Date   `json:"date"`
	}{Views: views, Date: p.Date})
}

// AllocationMetrics are the portfolio statistics returned with an allocation.
// Keys other than expected_return and volatility are kept in Extra.
type AllocationMetrics struct {
	ExpectedReturn float64
	Volatility     float64
	Extra          map[string]any
}

func (m AllocationMetrics) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["expected_return"] = m.ExpectedReturn
	out["volatility"] = m.Volatility
	return json.Marshal(out)
}

func (m *AllocationMetrics) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var parsed AllocationMetrics
	for k, v := range raw {
		switch k {
		case "expected_return":
			if err := json.Unmarshal(v, &parsed.ExpectedReturn); err != nil {
				return fmt.Errorf("metrics.expected_return: %w", err)
			}
		case "volatility":
			if err := json.Unmarshal(v, &parsed.Volatility); err != nil {
				return fmt.Errorf("metrics.volatility: %w", err)
			}
		default:
			var extra any
			if err := json.Unmarshal(v, &extra); err != nil {
				return fmt.Errorf("metrics.%s: %w", k, err)
			}
			if parsed.Extra == nil {
				parsed.Extra = make(map[string]any)
			}
			parsed.Extra[k] = extra
		}
	}
	*m = parsed
	return nil
}

// AllocationResult is the engine's answer to a scenario request.
type AllocationResult struct {
	Date             string             `json:"date"`
	Regime           map[string]any     `json:"regime"`
	Weights          map[Ticker]float64 `json:"weights"`
	Metrics          AllocationMetrics  `json:"metrics"`
	AppliedScenarios []string           `json:"applied_scenarios,omitempty"`
}

// Validate rejects an allocation without weights.
func (r *AllocationResult) Validate() error {
	if r.Weights == nil {
		return Malformed("", "weights missing")
	}
	return nil
}

// VolatilityRegime returns the regime's volatility label, or "" when absent.
func (r *AllocationResult) VolatilityRegime() string {
	if r == nil || r.Regime == nil {
		return ""
	}
	if s, ok := r.Regime["volatility"].(string); ok {
		return s
	}
	return ""
}

// Weight returns the weight for t, treating absent sectors as zero.
func (r *AllocationResult) Weight(t Ticker) float64 {
	if r == nil {
		return 0
	}
	return r.Weights[t]
}

// ProjectionRequest is the body of POST /simulation/monte_carlo.
type ProjectionRequest struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
	Days  int     `json:"days"`
}

// ProjectionResult is the Monte Carlo fan returned by the engine.
type ProjectionResult struct {
	Days            []float64   `json:"days"`
	P05             []float64   `json:"p05"`
	P25             []float64   `json:"p25"`
	P50             []float64   `json:"p50"`
	P75             []float64   `json:"p75"`
	P95             []float64   `json:"p95"`
	SamplePaths     [][]float64 `json:"sample_paths,omitempty"`
	SimulationCount int         `json:"simulation_count,omitempty"`
}

// BacktestRequest is the body of POST /simulation/backtest.
type BacktestRequest struct {
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	Views     []View `json:"views"`
}

// MarshalJSON keeps views as an array even when empty.
func (r BacktestRequest) MarshalJSON() ([]byte, error) {
	type alias BacktestRequest
	a := alias(r)
	if a.Views == nil {
		a.Views = []View{}
	}
	return json.Marshal(a)
}

// BacktestMetrics compares the strategy against SPY.
type BacktestMetrics struct {
	TotalReturn    float64 `json:"total_return"`
	SPYTotalReturn float64 `json:"spy_total_return"`
	Sharpe         float64 `json:"sharpe"`
	SPYSharpe      float64 `json:"spy_sharpe"`
	MaxDD          float64 `json:"max_dd"`
	SPYMaxDD       float64 `json:"spy_max_dd"`
	Volatility     float64 `json:"volatility"`
	SPYVolatility  float64 `json:"spy_volatility"`
}

// YearlyRow is one row of the yearly performance table. TopHoldings is an
// opaque display string and is never parsed.
type YearlyRow struct {
	Year        int     `json:"year"`
	Portfolio   float64 `json:"portfolio"`
	SPY         float64 `json:"spy"`
	Diff        float64 `json:"diff"`
	TopHoldings string  `json:"top_holdings"`
}

// BacktestResult is the historical simulation returned by the engine.
type BacktestResult struct {
	Dates       []string        `json:"dates"`
	Portfolio   []float64       `json:"portfolio"`
	SPY         []float64       `json:"spy"`
	Metrics     BacktestMetrics `json:"metrics"`
	YearlyTable []YearlyRow     `json:"yearly_table"`
}

// Validate rejects series of unequal length. Truncating them would misalign
// strategy and benchmark.
func (r *BacktestResult) Validate() error {
	if len(r.Portfolio) != len(r.Dates) {
		return Malformed("", "portfolio has %d points, dates has %d", len(r.Portfolio), len(r.Dates))
	}
	if len(r.SPY) != len(r.Dates) {
		return Malformed("", "spy has %d points, dates has %d", len(r.SPY), len(r.Dates))
	}
	return nil
}
