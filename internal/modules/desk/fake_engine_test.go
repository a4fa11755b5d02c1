package desk

import (
	"context"
	"sync"

	"github.com/aristath/scenariodesk/internal/domain"
)

// fakeEngine records calls and answers from canned results. A non-nil gate
// blocks each call until a value is sent on it.
type fakeEngine struct {
	mu sync.Mutex

	scenarioCalls   []domain.ScenarioPayload
	monteCarloCalls []domain.ProjectionRequest
	backtestCalls   []domain.BacktestRequest

	scenario    func(domain.ScenarioPayload) (*domain.AllocationResult, error)
	monteCarlo  func(domain.ProjectionRequest) (*domain.ProjectionResult, error)
	backtestRes func(domain.BacktestRequest) (*domain.BacktestResult, error)

	gate chan struct{}
}

func (f *fakeEngine) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeEngine) Scenario(ctx context.Context, p domain.ScenarioPayload) (*domain.AllocationResult, error) {
	f.mu.Lock()
	f.scenarioCalls = append(f.scenarioCalls, p)
	fn := f.scenario
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return fn(p)
}

func (f *fakeEngine) MonteCarlo(ctx context.Context, r domain.ProjectionRequest) (*domain.ProjectionResult, error) {
	f.mu.Lock()
	f.monteCarloCalls = append(f.monteCarloCalls, r)
	fn := f.monteCarlo
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return fn(r)
}

func (f *fakeEngine) Backtest(ctx context.Context, r domain.BacktestRequest) (*domain.BacktestResult, error) {
	f.mu.Lock()
	f.backtestCalls = append(f.backtestCalls, r)
	fn := f.backtestRes
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return fn(r)
}

func (f *fakeEngine) counts() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scenarioCalls), len(f.monteCarloCalls), len(f.backtestCalls)
}

func allocationFor(date string, er, vol float64) *domain.AllocationResult {
	return &domain.AllocationResult{
		Date:    date,
		Regime:  map[string]any{"volatility": "low"},
		Weights: map[domain.Ticker]float64{domain.XLK: 0.6, domain.XLE: 0.4},
		Metrics: domain.AllocationMetrics{ExpectedReturn: er, Volatility: vol},
	}
}

func fanOf(n int) *domain.ProjectionResult {
	r := &domain.ProjectionResult{SimulationCount: 5000}
	for i := 0; i < n; i++ {
		v := 10000 + float64(i)
		r.Days = append(r.Days, float64(i))
		r.P05 = append(r.P05, v-2)
		r.P25 = append(r.P25, v-1)
		r.P50 = append(r.P50, v)
		r.P75 = append(r.P75, v+1)
		r.P95 = append(r.P95, v+2)
	}
	return r
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		scenario: func(p domain.ScenarioPayload) (*domain.AllocationResult, error) {
			return allocationFor(p.Date.String(), 0.08, 0.15), nil
		},
		monteCarlo: func(r domain.ProjectionRequest) (*domain.ProjectionResult, error) {
			return fanOf(r.Days), nil
		},
		backtestRes: func(r domain.BacktestRequest) (*domain.BacktestResult, error) {
			return &domain.BacktestResult{
				Dates:       []string{r.StartDate.String(), r.EndDate.String()},
				Portfolio:   []float64{10000, 25000.4},
				SPY:         []float64{10000, 20000.6},
				Metrics:     domain.BacktestMetrics{TotalReturn: 1.5, SPYTotalReturn: 1.0},
				YearlyTable: []domain.YearlyRow{{Year: 2020, Portfolio: 0.3, SPY: 0.18, Diff: 0.12, TopHoldings: "XLK(30%)"}},
			}, nil
		},
	}
}
