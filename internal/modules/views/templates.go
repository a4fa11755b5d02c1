package views

import (
	"fmt"
	"sort"

	"github.com/aristath/scenariodesk/internal/domain"
)

// Template is a named, pre-built view list.
type Template struct {
	Key   string        `json:"key"`
	Name  string        `json:"name"`
	Views []domain.View `json:"views"`
}

var templates = map[string]Template{
	"ai_boom": {
		Key:  "ai_boom",
		Name: "AI Tech Supercycle",
		Views: []domain.View{
			{Ticker: domain.XLK, Value: 0.15, Confidence: 0.8},
			{Ticker: domain.XLC, Value: 0.10, Confidence: 0.6},
		},
	},
	"inflation": {
		Key:  "inflation",
		Name: "Inflation Hedge",
		Views: []domain.View{
			{Ticker: domain.XLE, Value: 0.12, Confidence: 0.7},
			{Ticker: domain.XLB, Value: 0.08, Confidence: 0.6},
		},
	},
	"recession": {
		Key:  "recession",
		Name: "Defensive / Recession",
		Views: []domain.View{
			{Ticker: domain.XLP, Value: 0.08, Confidence: 0.75},
			{Ticker: domain.XLV, Value: 0.08, Confidence: 0.7},
		},
	},
}

// LookupTemplate returns a copy of the template registered under key.
func LookupTemplate(key string) (Template, error) {
	t, ok := templates[key]
	if !ok {
		return Template{}, domain.NewValidationError(domain.CodeUnknownTemplate, fmt.Sprintf("unknown template %q", key))
	}
	t.Views = domain.CloneViews(t.Views)
	return t, nil
}

// Templates lists the catalog in key order.
func Templates() []Template {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Template, 0, len(keys))
	for _, k := range keys {
		t, _ := LookupTemplate(k)
		out = append(out, t)
	}
	return out
}
