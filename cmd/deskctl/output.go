package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aristath/scenariodesk/internal/modules/allocation"
	"github.com/aristath/scenariodesk/internal/modules/backtest"
	"github.com/aristath/scenariodesk/internal/modules/projection"
	"github.com/aristath/scenariodesk/pkg/format"
	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or as a table built by fill.
func render(w io.Writer, outputFormat string, v interface{}, fill func(*table)) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
		fill(t)
		return t.tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", outputFormat)
	}
}

type table struct {
	tw *tabwriter.Writer
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) blank() {
	fmt.Fprintln(t.tw)
}

func (t *table) allocation(s *allocation.Summary) {
	t.row("Date", s.Date)
	t.row("Regime", s.Regime)
	t.row("Expected return", s.ExpectedReturnPc)
	t.row("Volatility", s.VolatilityPc)
	t.row("Implied Sharpe", s.ImpliedSharpe)
	t.row("Risk", s.RiskLevel)
	if len(s.AppliedScenarios) > 0 {
		t.row("Applied", strings.Join(s.AppliedScenarios, ", "))
	}
	t.blank()
	t.row("TICKER", "SECTOR", "WEIGHT")
	for _, sl := range s.Slices {
		t.row(string(sl.Ticker), sl.Name, format.Percent(sl.Value, 1))
	}
}

func (t *table) projection(p *projection.Projection) {
	t.row("Simulations", fmt.Sprint(p.Count))
	t.row("Horizon (days)", fmt.Sprint(len(p.Points)))
	t.blank()
	t.row("OUTCOME", "TERMINAL VALUE")
	t.row("Unlucky (p05)", format.Fixed(p.Terminal.Low, 0))
	t.row("Expected (p50)", format.Fixed(p.Terminal.Median, 0))
	t.row("Lucky (p95)", format.Fixed(p.Terminal.High, 0))
}

func (t *table) backtest(s *backtest.Summary) {
	t.row("METRIC", "STRATEGY", "SPY")
	for _, c := range s.Cards {
		label := c.Label
		if c.Highlight {
			label += " *"
		}
		t.row(label, c.StrategyFmt, c.SPYFmt)
	}
	if len(s.Growth) > 0 {
		last := s.Growth[len(s.Growth)-1]
		t.row("Final value", format.Fixed(last.Portfolio, 0), format.Fixed(last.SPY, 0))
	}
	if len(s.Yearly) == 0 {
		return
	}
	t.blank()
	t.row("YEAR", "STRATEGY", "SPY", "EXCESS", "TOP HOLDINGS")
	for _, y := range s.Yearly {
		t.row(fmt.Sprint(y.Year), y.PortfolioPct, y.SPYPct, y.Excess, y.TopHoldings)
	}
}
