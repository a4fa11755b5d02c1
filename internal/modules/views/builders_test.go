package views

import (
	"testing"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleDraft_Build(t *testing.T) {
	got, err := DefaultSingleDraft().Build()
	require.NoError(t, err)
	assert.Equal(t, []domain.View{{Ticker: domain.XLK, Value: 0.05, Confidence: 0.5}}, got)
}

func TestSingleDraft_BuildIsIndependentOfDraft(t *testing.T) {
	draft := DefaultSingleDraft()
	got, err := draft.Build()
	require.NoError(t, err)

	draft.Value = 0.99
	assert.Equal(t, 0.05, got[0].Value)
}

func TestSingleDraft_DateRange(t *testing.T) {
	draft := SingleDraft{
		Ticker:     domain.XLF,
		Value:      -0.1,
		Confidence: 0.9,
		StartDate:  domain.MustDate("2009-01-01"),
		EndDate:    domain.MustDate("2008-01-01"),
	}
	_, err := draft.Build()
	assert.True(t, domain.IsValidation(err, domain.CodeInvalidDateRange))

	got, err := draft.Undated().Build()
	require.NoError(t, err)
	assert.False(t, got[0].HasDates())
}

func TestSingleDraft_UnknownTicker(t *testing.T) {
	_, err := SingleDraft{Ticker: "SPY", Value: 0.1, Confidence: 0.5}.Build()
	assert.True(t, domain.IsValidation(err, domain.CodeUnknownTicker))
}

func TestPairDraft_Build(t *testing.T) {
	got, err := DefaultPairDraft().Build()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.View{Ticker: domain.XLK, Value: 0.025, Confidence: 0.5}, got[0])
	assert.Equal(t, domain.View{Ticker: domain.XLE, Value: -0.025, Confidence: 0.5}, got[1])
}

func TestPairDraft_OffsettingViews(t *testing.T) {
	drafts := []PairDraft{
		{AssetA: domain.XLK, AssetB: domain.XLE, Diff: 0.05, Confidence: 0.5},
		{AssetA: domain.XLU, AssetB: domain.XLY, Diff: -0.13, Confidence: 0.9},
		{AssetA: domain.XLRE, AssetB: domain.XLRE, Diff: 0, Confidence: 0.1},
		{AssetA: domain.XLB, AssetB: domain.XLC, Diff: 0.333, Confidence: 1},
	}

	for _, d := range drafts {
		got, err := d.Build()
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.InDelta(t, 0, got[0].Value+got[1].Value, 1e-12)
		assert.Equal(t, d.Confidence, got[0].Confidence)
		assert.Equal(t, got[0].Confidence, got[1].Confidence)
		assert.False(t, got[0].HasDates())
		assert.False(t, got[1].HasDates())
	}
}

func TestPairDraft_UnknownTicker(t *testing.T) {
	_, err := PairDraft{AssetA: domain.XLK, AssetB: "QQQ", Diff: 0.05}.Build()
	assert.True(t, domain.IsValidation(err, domain.CodeUnknownTicker))
}
