// Package desk owns the per-session scenario state: the dashboard and
// backtest view lists, the as-of date and the latest allocation, projection
// and backtest results. All mutations go through Desk methods.
package desk

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/events"
	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/aristath/scenariodesk/internal/modules/allocation"
	"github.com/aristath/scenariodesk/internal/modules/backtest"
	"github.com/aristath/scenariodesk/internal/modules/projection"
	"github.com/aristath/scenariodesk/internal/modules/scenario"
	"github.com/aristath/scenariodesk/internal/modules/views"
	"github.com/rs/zerolog"
)

// Engine is the remote optimization service.
type Engine interface {
	Scenario(ctx context.Context, payload domain.ScenarioPayload) (*domain.AllocationResult, error)
	MonteCarlo(ctx context.Context, req domain.ProjectionRequest) (*domain.ProjectionResult, error)
	Backtest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error)
}

// Kind names a result type. Each kind has its own sequencer.
type Kind string

const (
	KindScenario   Kind = "scenario"
	KindProjection Kind = "projection"
	KindBacktest   Kind = "backtest"
)

const module = "desk"

// Options tunes a desk.
type Options struct {
	MonteCarloDays int
	Now            func() time.Time
}

// Desk is one user's scenario state. Methods are safe for concurrent use;
// engine calls run without holding the lock.
type Desk struct {
	engine  Engine
	bus     *events.Bus
	metrics *metrics.Registry
	log     zerolog.Logger
	now     func() time.Time
	days    int

	mu            sync.Mutex
	views         *views.List
	asOf          domain.Date
	allocation    *domain.AllocationResult
	summary       *allocation.Summary
	projection    *projection.Projection
	backtestViews *views.List
	start         domain.Date
	end           domain.Date
	backtest      *backtest.Summary
	loading       map[Kind]bool
	lastErr       map[Kind]string
	updatedAt     time.Time

	seq map[Kind]*scenario.Sequencer
}

// New creates an empty desk. m may be nil.
func New(engine Engine, bus *events.Bus, m *metrics.Registry, opts Options, log zerolog.Logger) *Desk {
	if opts.MonteCarloDays <= 0 {
		opts.MonteCarloDays = projection.DefaultDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Desk{
		engine:        engine,
		bus:           bus,
		metrics:       m,
		log:           log.With().Str("component", module).Logger(),
		now:           opts.Now,
		days:          opts.MonteCarloDays,
		views:         views.NewList(),
		backtestViews: views.NewList(),
		start:         backtest.DefaultStart,
		end:           backtest.DefaultEnd,
		loading:       make(map[Kind]bool),
		lastErr:       make(map[Kind]string),
		updatedAt:     opts.Now(),
		seq: map[Kind]*scenario.Sequencer{
			KindScenario:   {},
			KindProjection: {},
			KindBacktest:   {},
		},
	}
}

// Events returns the desk's event bus.
func (d *Desk) Events() *events.Bus { return d.bus }

// AddSingleView appends one undated view built from draft.
func (d *Desk) AddSingleView(draft views.SingleDraft) error {
	built, err := draft.Undated().Build()
	if err != nil {
		return err
	}
	d.appendViews(built)
	return nil
}

// AddPairView appends the two offsetting views built from draft.
func (d *Desk) AddPairView(draft views.PairDraft) error {
	built, err := draft.Build()
	if err != nil {
		return err
	}
	d.appendViews(built)
	return nil
}

func (d *Desk) appendViews(vs []domain.View) {
	d.mu.Lock()
	d.views.Append(vs...)
	n := d.views.Len()
	d.clearProjectionLocked()
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.ViewsChanged, map[string]any{"count": n})
}

// ApplyTemplate replaces the dashboard views with a template. An empty key
// changes nothing.
func (d *Desk) ApplyTemplate(key string) error {
	d.mu.Lock()
	applied, err := d.views.ApplyTemplate(key)
	if err != nil || !applied {
		d.mu.Unlock()
		return err
	}
	n := d.views.Len()
	d.clearProjectionLocked()
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.ViewsChanged, map[string]any{"count": n, "template": key})
	return nil
}

// RemoveView deletes the dashboard view at index i.
func (d *Desk) RemoveView(i int) error {
	d.mu.Lock()
	if _, err := d.views.Remove(i); err != nil {
		d.mu.Unlock()
		return err
	}
	n := d.views.Len()
	d.clearProjectionLocked()
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.ViewsChanged, map[string]any{"count": n})
	return nil
}

// SetAsOfDate selects the allocation date. The zero date means most recent.
func (d *Desk) SetAsOfDate(asOf domain.Date) error {
	if err := scenario.CheckAsOf(asOf, d.now()); err != nil {
		return err
	}

	d.mu.Lock()
	d.asOf = asOf
	d.clearProjectionLocked()
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.AsOfChanged, map[string]any{"as_of": asOf.String()})
	return nil
}

// AddBacktestView appends a possibly dated view to the backtest list.
func (d *Desk) AddBacktestView(draft views.SingleDraft) error {
	built, err := draft.Build()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.backtestViews.Append(built...)
	n := d.backtestViews.Len()
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.BacktestViewsChanged, map[string]any{"count": n})
	return nil
}

// RemoveBacktestView deletes the backtest view at index i.
func (d *Desk) RemoveBacktestView(i int) error {
	d.mu.Lock()
	if _, err := d.backtestViews.Remove(i); err != nil {
		d.mu.Unlock()
		return err
	}
	n := d.backtestViews.Len()
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.BacktestViewsChanged, map[string]any{"count": n})
	return nil
}

// SetBacktestPeriod sets the simulated date range.
func (d *Desk) SetBacktestPeriod(start, end domain.Date) error {
	if err := backtest.CheckPeriod(start, end); err != nil {
		return err
	}

	d.mu.Lock()
	d.start, d.end = start, end
	d.touchLocked()
	d.mu.Unlock()

	d.emit(events.BacktestPeriodChanged, map[string]any{"start_date": start.String(), "end_date": end.String()})
	return nil
}

// clearProjectionLocked drops the projection and invalidates any projection
// still in flight, since it was computed from a superseded allocation. The
// stamp advances even when nothing is in flight.
func (d *Desk) clearProjectionLocked() {
	d.seq[KindProjection].Supersede()
	d.loading[KindProjection] = false
	if d.projection == nil {
		return
	}
	d.projection = nil
	d.emit(events.ProjectionCleared, nil)
}

func (d *Desk) touchLocked() {
	d.updatedAt = d.now()
}

func (d *Desk) emit(t events.EventType, data map[string]any) {
	if d.bus != nil {
		d.bus.Emit(t, module, data)
	}
}
