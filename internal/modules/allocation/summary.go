package allocation

import (
	"math"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/pkg/format"
)

const (
	sharpeEpsilon     = 1e-4
	highRiskThreshold = 0.18
	weightTolerance   = 1e-6
)

// ImpliedSharpe is expected return over volatility, with a small epsilon so a
// reported volatility of exactly zero does not divide by zero.
func ImpliedSharpe(m domain.AllocationMetrics) float64 {
	return m.ExpectedReturn / (m.Volatility + sharpeEpsilon)
}

// RiskLevel labels a volatility figure for the dashboard card.
func RiskLevel(volatility float64) string {
	if volatility > highRiskThreshold {
		return "High"
	}
	return "Moderate"
}

// Summary is the dashboard's allocation card.
type Summary struct {
	Date             string        `json:"date"`
	Regime           string        `json:"regime"`
	ExpectedReturn   float64       `json:"expected_return"`
	Volatility       float64       `json:"volatility"`
	ExpectedReturnPc string        `json:"expected_return_pct"`
	VolatilityPc     string        `json:"volatility_pct"`
	ImpliedSharpe    string        `json:"implied_sharpe"`
	RiskLevel        string        `json:"risk_level"`
	AppliedScenarios []string      `json:"applied_scenarios,omitempty"`
	WeightsTotal     float64       `json:"weights_total"`
	Slices           []Slice       `json:"slices"`
	Legend           []LegendEntry `json:"legend"`
}

// Summarize builds the dashboard card for an allocation.
func Summarize(r domain.AllocationResult) Summary {
	series := ToChartSeries(r.Weights)
	return Summary{
		Date:             r.Date,
		Regime:           r.VolatilityRegime(),
		ExpectedReturn:   r.Metrics.ExpectedReturn,
		Volatility:       r.Metrics.Volatility,
		ExpectedReturnPc: format.Percent(r.Metrics.ExpectedReturn, 1),
		VolatilityPc:     format.Percent(r.Metrics.Volatility, 1),
		ImpliedSharpe:    format.Fixed(ImpliedSharpe(r.Metrics), 2),
		RiskLevel:        RiskLevel(r.Metrics.Volatility),
		AppliedScenarios: r.AppliedScenarios,
		WeightsTotal:     WeightsTotal(r.Weights),
		Slices:           series.Slices,
		Legend:           series.Legend,
	}
}

// WeightsBalanced reports whether the known weights sum to one.
func WeightsBalanced(weights map[domain.Ticker]float64) bool {
	return math.Abs(WeightsTotal(weights)-1) <= weightTolerance
}
