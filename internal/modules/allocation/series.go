// Package allocation turns an engine allocation into chart-ready data: pie
// slices, a full sector legend and the dashboard summary card.
package allocation

import (
	"sort"

	"github.com/aristath/scenariodesk/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Palette is assigned by sort position and cycles after 11 entries. Colors
// follow rank, so they move when rankings change between requests.
var Palette = [...]string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899",
	"#06b6d4", "#f97316", "#6366f1", "#84cc16", "#14b8a6",
}

// InactiveColor marks zero-weight legend entries.
const InactiveColor = "#334155"

// SliceThreshold is the minimum weight for a sector to get a pie slice.
const SliceThreshold = 0.001

// Slice is one pie segment.
type Slice struct {
	Ticker domain.Ticker `json:"ticker"`
	Name   string        `json:"name"`
	Value  float64       `json:"value"`
	Color  string        `json:"color"`
}

// LegendEntry describes one sector in the full legend.
type LegendEntry struct {
	Ticker domain.Ticker `json:"ticker"`
	Name   string        `json:"name"`
	Weight float64       `json:"weight"`
	Color  string        `json:"color"`
	Active bool          `json:"active"`
}

// ChartSeries is the render-ready form of a weights map.
type ChartSeries struct {
	Slices []Slice       `json:"slices"`
	Legend []LegendEntry `json:"legend"`
}

// ColorAt returns the palette color for a sort position.
func ColorAt(position int) string {
	return Palette[position%len(Palette)]
}

// ToChartSeries builds slices and legend from weights. Unknown tickers are
// ignored; absent sectors count as weight zero.
func ToChartSeries(weights map[domain.Ticker]float64) ChartSeries {
	ranked := rankSectors(weights)

	slices := make([]Slice, 0, len(ranked))
	legend := make([]LegendEntry, 0, len(ranked))
	for i, s := range ranked {
		w := weights[s.Ticker]
		if w > SliceThreshold {
			slices = append(slices, Slice{Ticker: s.Ticker, Name: s.Name, Value: w, Color: ColorAt(len(slices))})
		}
		entry := LegendEntry{Ticker: s.Ticker, Name: s.Name, Weight: w, Color: ColorAt(i), Active: w > 0}
		if !entry.Active {
			entry.Color = InactiveColor
		}
		legend = append(legend, entry)
	}
	return ChartSeries{Slices: slices, Legend: legend}
}

// rankSectors orders all sectors by descending weight; ties keep display order.
func rankSectors(weights map[domain.Ticker]float64) []domain.Sector {
	sectors := domain.Sectors()
	sort.SliceStable(sectors, func(i, j int) bool {
		return weights[sectors[i].Ticker] > weights[sectors[j].Ticker]
	})
	return sectors
}

// WeightsTotal sums the weights of known sectors.
func WeightsTotal(weights map[domain.Ticker]float64) float64 {
	vals := make([]float64, 0, len(weights))
	for _, t := range domain.Tickers() {
		if w, ok := weights[t]; ok {
			vals = append(vals, w)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	return floats.Sum(vals)
}
