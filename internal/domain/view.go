package domain

import (
	"encoding/json"
	"fmt"
)

// View is a discretionary expected-return view on one sector.
// A view without dates applies across the full simulated period.
type View struct {
	Ticker     Ticker
	Value      float64
	Confidence float64
	StartDate  Date
	EndDate    Date
}

// viewWire is the engine's JSON shape for a view.
type viewWire struct {
	Ticker     Ticker  `json:"ticker" yaml:"ticker"`
	Value      float64 `json:"value" yaml:"value"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	StartDate  string  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// HasDates reports whether either bound is set.
func (v View) HasDates() bool {
	return !v.StartDate.IsZero() || !v.EndDate.IsZero()
}

// String renders the view for logs, e.g. "XLK +5.0% @0.50".
func (v View) String() string {
	s := fmt.Sprintf("%s %+.1f%% @%.2f", v.Ticker, v.Value*100, v.Confidence)
	if v.HasDates() {
		s += fmt.Sprintf(" [%s..%s]", v.StartDate, v.EndDate)
	}
	return s
}

// Admit applies the admission rule to a candidate view and returns a copy.
// Only an inverted date range is rejected; value and confidence pass through.
func Admit(candidate View) (View, error) {
	if !candidate.StartDate.IsZero() && !candidate.EndDate.IsZero() && candidate.StartDate.After(candidate.EndDate) {
		return View{}, NewValidationError(CodeInvalidDateRange,
			fmt.Sprintf("start date %s is after end date %s", candidate.StartDate, candidate.EndDate))
	}
	admitted := candidate
	return admitted, nil
}

func (v View) toWire() viewWire {
	return viewWire{
		Ticker:     v.Ticker,
		Value:      v.Value,
		Confidence: v.Confidence,
		StartDate:  v.StartDate.String(),
		EndDate:    v.EndDate.String(),
	}
}

func (w viewWire) toView() (View, error) {
	t, err := ParseTicker(string(w.Ticker))
	if err != nil {
		return View{}, err
	}
	start, err := ParseDate(w.StartDate)
	if err != nil {
		return View{}, err
	}
	end, err := ParseDate(w.EndDate)
	if err != nil {
		return View{}, err
	}
	return View{Ticker: t, Value: w.Value, Confidence: w.Confidence, StartDate: start, EndDate: end}, nil
}

// MarshalJSON encodes the view with the engine's field names.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toWire())
}

// UnmarshalJSON decodes and validates ticker and dates.
func (v *View) UnmarshalJSON(b []byte) error {
	var w viewWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	parsed, err := w.toView()
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v View) MarshalYAML() (any, error) {
	return v.toWire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler via a decode callback so the
// domain package does not depend on a YAML library.
func (v *View) UnmarshalYAML(unmarshal func(any) error) error {
	var w viewWire
	if err := unmarshal(&w); err != nil {
		return err
	}
	parsed, err := w.toView()
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// CloneViews returns an independent copy of views. A nil or empty input
// yields an empty, non-nil slice.
func CloneViews(views []View) []View {
	out := make([]View, len(views))
	copy(out, views)
	return out
}
