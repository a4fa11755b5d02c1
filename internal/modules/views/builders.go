// Package views builds discretionary views from the three input modes
// (single asset, relative pair, named template) and owns the view list they
// are admitted into.
package views

import (
	"fmt"

	"github.com/aristath/scenariodesk/internal/domain"
)

// Builder defaults used by the dashboard forms.
const (
	DefaultValue      = 0.05
	DefaultConfidence = 0.50
)

// SingleDraft is the editable state of the single-asset form. StartDate and
// EndDate are only offered on the backtest page.
type SingleDraft struct {
	Ticker     domain.Ticker `json:"ticker"`
	Value      float64       `json:"value"`
	Confidence float64       `json:"confidence"`
	StartDate  domain.Date   `json:"start_date"`
	EndDate    domain.Date   `json:"end_date"`
}

// DefaultSingleDraft returns the form's initial state.
func DefaultSingleDraft() SingleDraft {
	return SingleDraft{Ticker: domain.XLK, Value: DefaultValue, Confidence: DefaultConfidence}
}

// Build admits exactly one view from the draft.
func (d SingleDraft) Build() ([]domain.View, error) {
	if err := checkTicker(d.Ticker); err != nil {
		return nil, err
	}
	v, err := domain.Admit(domain.View{
		Ticker:     d.Ticker,
		Value:      d.Value,
		Confidence: d.Confidence,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
	})
	if err != nil {
		return nil, err
	}
	return []domain.View{v}, nil
}

// Undated returns the draft with its date bounds removed, as the dashboard
// form has no date inputs.
func (d SingleDraft) Undated() SingleDraft {
	d.StartDate = domain.Date{}
	d.EndDate = domain.Date{}
	return d
}

// PairDraft is the editable state of the relative-view form: AssetA is
// expected to outperform AssetB by Diff.
type PairDraft struct {
	AssetA     domain.Ticker `json:"asset_a"`
	AssetB     domain.Ticker `json:"asset_b"`
	Diff       float64       `json:"diff"`
	Confidence float64       `json:"confidence"`
}

// DefaultPairDraft returns the form's initial state.
func DefaultPairDraft() PairDraft {
	return PairDraft{AssetA: domain.XLK, AssetB: domain.XLE, Diff: DefaultValue, Confidence: DefaultConfidence}
}

// Build admits two offsetting absolute views: +Diff/2 on A and -Diff/2 on B.
func (d PairDraft) Build() ([]domain.View, error) {
	if err := checkTicker(d.AssetA); err != nil {
		return nil, err
	}
	if err := checkTicker(d.AssetB); err != nil {
		return nil, err
	}
	half := d.Diff / 2
	a, err := domain.Admit(domain.View{Ticker: d.AssetA, Value: half, Confidence: d.Confidence})
	if err != nil {
		return nil, err
	}
	b, err := domain.Admit(domain.View{Ticker: d.AssetB, Value: -half, Confidence: d.Confidence})
	if err != nil {
		return nil, err
	}
	return []domain.View{a, b}, nil
}

func checkTicker(t domain.Ticker) error {
	if !t.Valid() {
		return domain.NewValidationError(domain.CodeUnknownTicker, fmt.Sprintf("unknown sector ticker %q", t))
	}
	return nil
}
