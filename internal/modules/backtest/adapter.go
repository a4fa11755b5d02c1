// Package backtest adapts historical simulation results into a growth curve,
// a yearly excess-return table and strategy-vs-SPY metric cards.
package backtest

import (
	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/pkg/format"
)

const endpoint = "/simulation/backtest"

// Default backtest period.
var (
	DefaultStart = domain.NewDate(2006, 1, 1)
	DefaultEnd   = domain.NewDate(2026, 1, 6)
)

// GrowthPoint pairs the strategy and benchmark values on one date, rounded to
// whole currency units for display.
type GrowthPoint struct {
	Date      string  `json:"date"`
	Portfolio float64 `json:"Portfolio"`
	SPY       float64 `json:"SPY"`
}

// BuildGrowthCurve zips the parallel series. Mismatched lengths are rejected
// instead of truncated, which would misalign strategy and benchmark.
func BuildGrowthCurve(dates []string, portfolio, spy []float64) ([]GrowthPoint, error) {
	if len(portfolio) != len(dates) {
		return nil, domain.Malformed(endpoint, "portfolio has %d points, dates has %d", len(portfolio), len(dates))
	}
	if len(spy) != len(dates) {
		return nil, domain.Malformed(endpoint, "spy has %d points, dates has %d", len(spy), len(dates))
	}

	points := make([]GrowthPoint, len(dates))
	for i, d := range dates {
		points[i] = GrowthPoint{
			Date:      d,
			Portfolio: format.WholeUnits(portfolio[i]),
			SPY:       format.WholeUnits(spy[i]),
		}
	}
	return points, nil
}

// YearlyRow is a yearly table row as received plus its display fields.
type YearlyRow struct {
	domain.YearlyRow
	PortfolioPct      string `json:"portfolio_pct"`
	SPYPct            string `json:"spy_pct"`
	Excess            string `json:"excess"`
	ExcessPositive    bool   `json:"excess_positive"`
	PortfolioPositive bool   `json:"portfolio_positive"`
}

// BuildYearlyRows keeps every received field and adds formatted values.
func BuildYearlyRows(table []domain.YearlyRow) []YearlyRow {
	rows := make([]YearlyRow, len(table))
	for i, r := range table {
		rows[i] = YearlyRow{
			YearlyRow:         r,
			PortfolioPct:      format.Percent(r.Portfolio, 1),
			SPYPct:            format.Percent(r.SPY, 1),
			Excess:            format.SignedPercent(r.Diff, 1),
			ExcessPositive:    r.Diff > 0,
			PortfolioPositive: r.Portfolio > 0,
		}
	}
	return rows
}

// MetricCard compares one statistic for the strategy and SPY.
type MetricCard struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Strategy    float64 `json:"strategy"`
	SPY         float64 `json:"spy"`
	StrategyFmt string  `json:"strategy_fmt"`
	SPYFmt      string  `json:"spy_fmt"`
	Highlight   bool    `json:"highlight"`
}

// CompareMetrics builds the total return, Sharpe, drawdown and volatility
// cards. Total return is highlighted when the strategy matches or beats SPY.
func CompareMetrics(m domain.BacktestMetrics) []MetricCard {
	pct := func(key, label string, strategy, spy float64) MetricCard {
		return MetricCard{
			Key: key, Label: label, Strategy: strategy, SPY: spy,
			StrategyFmt: format.Percent(strategy, 1),
			SPYFmt:      format.Percent(spy, 1),
		}
	}

	total := pct("total_return", "Total Return", m.TotalReturn, m.SPYTotalReturn)
	total.Highlight = m.TotalReturn >= m.SPYTotalReturn

	sharpe := MetricCard{
		Key: "sharpe", Label: "Sharpe Ratio", Strategy: m.Sharpe, SPY: m.SPYSharpe,
		StrategyFmt: format.Fixed(m.Sharpe, 2),
		SPYFmt:      format.Fixed(m.SPYSharpe, 2),
	}

	return []MetricCard{
		total,
		sharpe,
		pct("max_dd", "Max Drawdown", m.MaxDD, m.SPYMaxDD),
		pct("volatility", "Volatility", m.Volatility, m.SPYVolatility),
	}
}

// Summary is everything the backtest page renders.
type Summary struct {
	Growth  []GrowthPoint          `json:"growth"`
	Yearly  []YearlyRow            `json:"yearly"`
	Cards   []MetricCard           `json:"cards"`
	Metrics domain.BacktestMetrics `json:"metrics"`
}

// Summarize adapts a full backtest result.
func Summarize(r domain.BacktestResult) (Summary, error) {
	growth, err := BuildGrowthCurve(r.Dates, r.Portfolio, r.SPY)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Growth:  growth,
		Yearly:  BuildYearlyRows(r.YearlyTable),
		Cards:   CompareMetrics(r.Metrics),
		Metrics: r.Metrics,
	}, nil
}

// CheckPeriod validates a backtest period.
func CheckPeriod(start, end domain.Date) error {
	if start.IsZero() || end.IsZero() {
		return domain.NewValidationError(domain.CodeInvalidDate, "backtest period needs both start and end dates")
	}
	if start.After(end) {
		return domain.NewValidationError(domain.CodeInvalidDateRange, "backtest start "+start.String()+" is after end "+end.String())
	}
	return nil
}
