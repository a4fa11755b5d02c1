package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/aristath/scenariodesk/internal/modules/views"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// viewFile is the YAML layout accepted by --file.
type viewFile struct {
	AsOf      string        `yaml:"as_of"`
	Template  string        `yaml:"template"`
	Views     []domain.View `yaml:"views"`
	Pairs     []pairSpec    `yaml:"pairs"`
	StartDate string        `yaml:"start_date"`
	EndDate   string        `yaml:"end_date"`
}

type pairSpec struct {
	AssetA     string   `yaml:"asset_a"`
	AssetB     string   `yaml:"asset_b"`
	Diff       float64  `yaml:"diff"`
	Confidence *float64 `yaml:"confidence"`
}

// viewInputs collects views from flags and an optional file.
type viewInputs struct {
	file     string
	template string
	singles  []string
	pairs    []string
	asOf     string
}

func (in *viewInputs) bind(cmd *cobra.Command, withAsOf bool) {
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "YAML file with views")
	cmd.Flags().StringVar(&in.template, "template", "", "Template key (ai_boom, inflation, recession)")
	cmd.Flags().StringArrayVar(&in.singles, "view", nil, "Single view TICKER:VALUE[:CONFIDENCE[:START:END]], repeatable")
	cmd.Flags().StringArrayVar(&in.pairs, "pair", nil, "Pair view A:B:DIFF[:CONFIDENCE], repeatable")
	if withAsOf {
		cmd.Flags().StringVar(&in.asOf, "as-of", "", "Allocation date YYYY-MM-DD (default most recent)")
	}
}

// load reads the file, if any. Flags take precedence over file values.
func (in *viewInputs) load() (*viewFile, error) {
	f := &viewFile{}
	if in.file != "" {
		raw, err := os.ReadFile(in.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read view file: %w", err)
		}
		if err := yaml.Unmarshal(raw, f); err != nil {
			return nil, fmt.Errorf("failed to parse view file %s: %w", in.file, err)
		}
	}
	if in.template != "" {
		f.Template = in.template
	}
	if in.asOf != "" {
		f.AsOf = in.asOf
	}
	for _, s := range in.singles {
		v, err := parseSingle(s)
		if err != nil {
			return nil, err
		}
		f.Views = append(f.Views, v)
	}
	for _, s := range in.pairs {
		p, err := parsePair(s)
		if err != nil {
			return nil, err
		}
		f.Pairs = append(f.Pairs, p)
	}
	return f, nil
}

// applyDashboard loads the template, views and pairs into the dashboard list
// and sets the as-of date.
func (f *viewFile) applyDashboard(d *desk.Desk) error {
	if err := d.ApplyTemplate(f.Template); err != nil {
		return err
	}
	for _, v := range f.Views {
		if err := d.AddSingleView(draftOf(v)); err != nil {
			return err
		}
	}
	for _, p := range f.Pairs {
		if err := d.AddPairView(p.draft()); err != nil {
			return err
		}
	}
	asOf, err := domain.ParseDate(f.AsOf)
	if err != nil {
		return err
	}
	return d.SetAsOfDate(asOf)
}

// applyBacktest loads the dated views and period. A template seeds the list
// with undated views; pairs are not offered on the backtest page.
func (f *viewFile) applyBacktest(d *desk.Desk) error {
	if f.Template != "" {
		t, err := views.LookupTemplate(f.Template)
		if err != nil {
			return err
		}
		for _, v := range t.Views {
			if err := d.AddBacktestView(draftOf(v)); err != nil {
				return err
			}
		}
	}
	for _, v := range f.Views {
		if err := d.AddBacktestView(draftOf(v)); err != nil {
			return err
		}
	}
	if len(f.Pairs) > 0 {
		return fmt.Errorf("pair views are not supported for backtests")
	}

	start, err := domain.ParseDate(f.StartDate)
	if err != nil {
		return err
	}
	end, err := domain.ParseDate(f.EndDate)
	if err != nil {
		return err
	}
	snap := d.Snapshot().Backtest
	if start.IsZero() {
		start = snap.StartDate
	}
	if end.IsZero() {
		end = snap.EndDate
	}
	return d.SetBacktestPeriod(start, end)
}

func draftOf(v domain.View) views.SingleDraft {
	return views.SingleDraft{
		Ticker:     v.Ticker,
		Value:      v.Value,
		Confidence: v.Confidence,
		StartDate:  v.StartDate,
		EndDate:    v.EndDate,
	}
}

func (p pairSpec) draft() views.PairDraft {
	d := views.DefaultPairDraft()
	d.AssetA = domain.Ticker(strings.ToUpper(strings.TrimSpace(p.AssetA)))
	d.AssetB = domain.Ticker(strings.ToUpper(strings.TrimSpace(p.AssetB)))
	d.Diff = p.Diff
	if p.Confidence != nil {
		d.Confidence = *p.Confidence
	}
	return d
}

// parseSingle parses TICKER:VALUE[:CONFIDENCE[:START:END]].
func parseSingle(s string) (domain.View, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) == 4 || len(parts) > 5 {
		return domain.View{}, fmt.Errorf("invalid --view %q, want TICKER:VALUE[:CONFIDENCE[:START:END]]", s)
	}
	t, err := domain.ParseTicker(parts[0])
	if err != nil {
		return domain.View{}, err
	}
	v := domain.View{Ticker: t, Confidence: views.DefaultConfidence}
	if v.Value, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return domain.View{}, fmt.Errorf("invalid value in --view %q: %w", s, err)
	}
	if len(parts) >= 3 {
		if v.Confidence, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return domain.View{}, fmt.Errorf("invalid confidence in --view %q: %w", s, err)
		}
	}
	if len(parts) == 5 {
		if v.StartDate, err = domain.ParseDate(parts[3]); err != nil {
			return domain.View{}, err
		}
		if v.EndDate, err = domain.ParseDate(parts[4]); err != nil {
			return domain.View{}, err
		}
	}
	return v, nil
}

// parsePair parses A:B:DIFF[:CONFIDENCE].
func parsePair(s string) (pairSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return pairSpec{}, fmt.Errorf("invalid --pair %q, want A:B:DIFF[:CONFIDENCE]", s)
	}
	p := pairSpec{AssetA: parts[0], AssetB: parts[1]}
	var err error
	if p.Diff, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return pairSpec{}, fmt.Errorf("invalid diff in --pair %q: %w", s, err)
	}
	if len(parts) == 4 {
		c, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return pairSpec{}, fmt.Errorf("invalid confidence in --pair %q: %w", s, err)
		}
		p.Confidence = &c
	}
	return p, nil
}
