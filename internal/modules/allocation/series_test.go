package allocation

import (
	"testing"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChartSeries_Slices(t *testing.T) {
	weights := map[domain.Ticker]float64{
		domain.XLE: 0.2,
		domain.XLK: 0.5,
		domain.XLV: 0.2999,
		domain.XLU: 0.0001,
		"SPY":      0.9,
	}

	got := ToChartSeries(weights)
	require.Len(t, got.Slices, 3)
	assert.Equal(t, Slice{Ticker: domain.XLK, Name: "Technology", Value: 0.5, Color: "#3b82f6"}, got.Slices[0])
	assert.Equal(t, Slice{Ticker: domain.XLV, Name: "Healthcare", Value: 0.2999, Color: "#ef4444"}, got.Slices[1])
	assert.Equal(t, Slice{Ticker: domain.XLE, Name: "Energy", Value: 0.2, Color: "#10b981"}, got.Slices[2])
}

func TestToChartSeries_LegendCoversAllSectors(t *testing.T) {
	weights := map[domain.Ticker]float64{domain.XLRE: 0.7, domain.XLF: 0.3}

	got := ToChartSeries(weights)
	require.Len(t, got.Legend, domain.SectorCount)

	assert.Equal(t, LegendEntry{Ticker: domain.XLRE, Name: "Real Estate", Weight: 0.7, Color: "#3b82f6", Active: true}, got.Legend[0])
	assert.Equal(t, LegendEntry{Ticker: domain.XLF, Name: "Financials", Weight: 0.3, Color: "#ef4444", Active: true}, got.Legend[1])

	// Zero-weight entries keep display order and use the inactive color.
	assert.Equal(t, domain.XLK, got.Legend[2].Ticker)
	assert.Equal(t, domain.XLE, got.Legend[3].Ticker)
	for _, e := range got.Legend[2:] {
		assert.False(t, e.Active)
		assert.Equal(t, InactiveColor, e.Color)
		assert.Equal(t, 0.0, e.Weight)
	}
}

func TestToChartSeries_Empty(t *testing.T) {
	got := ToChartSeries(nil)
	assert.Empty(t, got.Slices)
	assert.NotNil(t, got.Slices)
	assert.Len(t, got.Legend, domain.SectorCount)
}

func TestColorAt_Cycles(t *testing.T) {
	assert.Equal(t, "#3b82f6", ColorAt(0))
	assert.Equal(t, "#14b8a6", ColorAt(10))
	assert.Equal(t, "#3b82f6", ColorAt(11))
}

func TestWeightsTotal(t *testing.T) {
	assert.InDelta(t, 1.0, WeightsTotal(map[domain.Ticker]float64{domain.XLK: 0.25, domain.XLE: 0.75, "BAD": 5}), 1e-12)
	assert.Equal(t, 0.0, WeightsTotal(nil))
	assert.True(t, WeightsBalanced(map[domain.Ticker]float64{domain.XLK: 0.6, domain.XLF: 0.4}))
	assert.False(t, WeightsBalanced(map[domain.Ticker]float64{domain.XLK: 0.6}))
}
