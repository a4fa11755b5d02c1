package desk

import (
	"time"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/modules/allocation"
	"github.com/aristath/scenariodesk/internal/modules/backtest"
	"github.com/aristath/scenariodesk/internal/modules/projection"
)

// BacktestState is the backtest page portion of a snapshot.
type BacktestState struct {
	Views     []domain.View     `json:"views"`
	StartDate domain.Date       `json:"start_date"`
	EndDate   domain.Date       `json:"end_date"`
	Result    *backtest.Summary `json:"result"`
}

// Snapshot is a consistent copy of a desk's state for rendering.
type Snapshot struct {
	Views      []domain.View          `json:"views"`
	AsOf       domain.Date            `json:"as_of"`
	Allocation *allocation.Summary    `json:"allocation"`
	Projection *projection.Projection `json:"projection"`
	Backtest   BacktestState          `json:"backtest"`
	Loading    map[Kind]bool          `json:"loading"`
	Errors     map[Kind]string        `json:"errors,omitempty"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Snapshot returns the current state. Result pointers are shared but never
// mutated after they are stored, since results are replaced wholesale.
func (d *Desk) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	loading := make(map[Kind]bool, 3)
	for _, k := range []Kind{KindScenario, KindProjection, KindBacktest} {
		loading[k] = d.loading[k]
	}
	var errs map[Kind]string
	if len(d.lastErr) > 0 {
		errs = make(map[Kind]string, len(d.lastErr))
		for k, v := range d.lastErr {
			errs[k] = v
		}
	}

	return Snapshot{
		Views:      d.views.Views(),
		AsOf:       d.asOf,
		Allocation: d.summary,
		Projection: d.projection,
		Backtest: BacktestState{
			Views:     d.backtestViews.Views(),
			StartDate: d.start,
			EndDate:   d.end,
			Result:    d.backtest,
		},
		Loading:   loading,
		Errors:    errs,
		UpdatedAt: d.updatedAt,
	}
}

// Allocation returns the raw engine allocation, or nil.
func (d *Desk) Allocation() *domain.AllocationResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocation
}
