package desk

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/events"
	"github.com/aristath/scenariodesk/internal/modules/allocation"
	"github.com/aristath/scenariodesk/internal/modules/backtest"
	"github.com/aristath/scenariodesk/internal/modules/projection"
	"github.com/aristath/scenariodesk/internal/modules/scenario"
)

// RunScenario submits the dashboard views and as-of date. On success the
// allocation is replaced wholesale and the projection is cleared.
func (d *Desk) RunScenario(ctx context.Context) (*allocation.Summary, error) {
	d.mu.Lock()
	payload := scenario.Compose(d.views.Views(), d.asOf)
	stamp := d.begin(KindScenario)
	d.mu.Unlock()

	d.emit(events.ScenarioStarted, map[string]any{"stamp": stamp, "views": len(payload.Views)})
	result, err := d.engine.Scenario(ctx, payload)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.settle(KindScenario, stamp, err); err != nil {
		return nil, err
	}

	summary := allocation.Summarize(*result)
	if !allocation.WeightsBalanced(result.Weights) {
		d.log.Warn().Float64("total", summary.WeightsTotal).Str("date", result.Date).Msg("Allocation weights do not sum to one")
	}
	d.allocation = result
	d.summary = &summary
	d.clearProjectionLocked()
	d.touchLocked()

	d.emit(events.ScenarioCompleted, map[string]any{"stamp": stamp, "date": result.Date, "regime": summary.Regime})
	out := summary
	return &out, nil
}

// RunMonteCarlo projects the current allocation forward. It fails with
// domain.ErrNoAllocation, without calling the engine, if no scenario has
// succeeded yet.
func (d *Desk) RunMonteCarlo(ctx context.Context) (*projection.Projection, error) {
	d.mu.Lock()
	req, err := projection.NewRequest(d.allocation, d.days)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	stamp := d.begin(KindProjection)
	d.mu.Unlock()

	d.emit(events.ProjectionStarted, map[string]any{"stamp": stamp, "mu": req.Mu, "sigma": req.Sigma, "days": req.Days})
	result, err := d.engine.MonteCarlo(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.settle(KindProjection, stamp, err); err != nil {
		return nil, err
	}

	merged, err := projection.Merge(*result)
	if err != nil {
		return nil, d.rejectMalformedLocked(KindProjection, err)
	}
	d.projection = &merged
	d.touchLocked()

	d.emit(events.ProjectionCompleted, map[string]any{"stamp": stamp, "points": len(merged.Points), "count": merged.Count})
	out := merged
	return &out, nil
}

// RunBacktest simulates the backtest views over the backtest period.
func (d *Desk) RunBacktest(ctx context.Context) (*backtest.Summary, error) {
	d.mu.Lock()
	req := domain.BacktestRequest{StartDate: d.start, EndDate: d.end, Views: d.backtestViews.Views()}
	stamp := d.begin(KindBacktest)
	d.mu.Unlock()

	d.emit(events.BacktestStarted, map[string]any{"stamp": stamp, "views": len(req.Views)})
	result, err := d.engine.Backtest(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.settle(KindBacktest, stamp, err); err != nil {
		return nil, err
	}

	summary, err := backtest.Summarize(*result)
	if err != nil {
		return nil, d.rejectMalformedLocked(KindBacktest, err)
	}
	d.backtest = &summary
	d.touchLocked()

	d.emit(events.BacktestCompleted, map[string]any{"stamp": stamp, "points": len(summary.Growth)})
	out := summary
	return &out, nil
}

// begin stamps a new request of kind k and marks it loading.
func (d *Desk) begin(k Kind) uint64 {
	stamp := d.seq[k].Issue()
	d.loading[k] = true
	return stamp
}

// settle decides whether a resolved request may touch state. Superseded
// responses, failures included, are dropped as stale. A failure of the
// latest request is recorded and leaves prior results in place.
func (d *Desk) settle(k Kind, stamp uint64, callErr error) error {
	if !d.seq[k].IsLatest(stamp) {
		d.log.Debug().Str("kind", string(k)).Uint64("stamp", stamp).Uint64("latest", d.seq[k].Latest()).Msg("Dropping stale response")
		if d.metrics != nil {
			d.metrics.StaleDropped.WithLabelValues(string(k)).Inc()
		}
		d.emit(events.StaleResponseDropped, map[string]any{"kind": string(k), "stamp": stamp})
		return fmt.Errorf("%s request %d: %w", k, stamp, domain.ErrStaleResponse)
	}

	d.loading[k] = false
	if errors.Is(callErr, domain.ErrMalformedResponse) {
		// Counted by the engine client at decode time.
		return d.discardMalformedLocked(k, callErr)
	}
	if callErr != nil {
		d.lastErr[k] = callErr.Error()
		d.log.Warn().Err(callErr).Str("kind", string(k)).Msg("Engine request failed")
		d.emit(events.ErrorOccurred, map[string]any{"kind": string(k), "error": callErr.Error()})
		return callErr
	}
	delete(d.lastErr, k)
	return nil
}

// rejectMalformedLocked discards a result that decoded but failed its
// adapter's shape checks.
func (d *Desk) rejectMalformedLocked(k Kind, err error) error {
	var mre *domain.MalformedResponseError
	if errors.As(err, &mre) && d.metrics != nil {
		d.metrics.Malformed.WithLabelValues(mre.Endpoint).Inc()
	}
	return d.discardMalformedLocked(k, err)
}

func (d *Desk) discardMalformedLocked(k Kind, err error) error {
	d.lastErr[k] = err.Error()
	d.log.Error().Err(err).Str("kind", string(k)).Msg("Discarding malformed response")
	d.emit(events.ErrorOccurred, map[string]any{"kind": string(k), "error": err.Error()})
	return err
}
