package projection

import (
	"encoding/json"
	"testing"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fan() domain.ProjectionResult {
	return domain.ProjectionResult{
		Days: []float64{0, 1, 2},
		P05:  []float64{10000, 9800, 9600},
		P25:  []float64{10000, 9950, 9900},
		P50:  []float64{10000, 10020, 10050},
		P75:  []float64{10000, 10100, 10200},
		P95:  []float64{10000, 10250, 10500},
		SamplePaths: [][]float64{
			{10000, 10010, 10100},
			{10000, 9900, 9900},
		},
		SimulationCount: 1234,
	}
}

func TestMerge(t *testing.T) {
	p, err := Merge(fan())
	require.NoError(t, err)

	require.Len(t, p.Points, 3)
	assert.Equal(t, TimePoint{Day: 2, P05: 9600, P25: 9900, P50: 10050, P75: 10200, P95: 10500, Sims: []float64{10100, 9900}}, p.Points[2])
	assert.Equal(t, Terminal{Low: 9600, Median: 10050, High: 10500}, p.Terminal)
	assert.Equal(t, 1234, p.Count)

	require.NotNil(t, p.Dispersion)
	assert.Equal(t, 2, p.Dispersion.Paths)
	assert.InDelta(t, 10000, p.Dispersion.Mean, 1e-9)
	assert.InDelta(t, 141.4213562, p.Dispersion.StdDev, 1e-6)
	assert.Len(t, p.Layers, 7)
}

func TestMerge_PointKeys(t *testing.T) {
	p, err := Merge(fan())
	require.NoError(t, err)

	for _, pt := range p.Points {
		b, err := json.Marshal(pt)
		require.NoError(t, err)

		var keys map[string]float64
		require.NoError(t, json.Unmarshal(b, &keys))
		for _, k := range []string{"day", "p05", "p25", "p50", "p75", "p95", "sim0", "sim1"} {
			assert.Contains(t, keys, k)
		}
		assert.Len(t, keys, 8)
	}
}

func TestMerge_DefaultCountAndNoPaths(t *testing.T) {
	r := fan()
	r.SamplePaths = nil
	r.SimulationCount = 0

	p, err := Merge(r)
	require.NoError(t, err)
	assert.Equal(t, DefaultSimulationCount, p.Count)
	assert.Nil(t, p.Dispersion)
	assert.Nil(t, p.Points[0].Sims)
	assert.Len(t, p.Layers, 5)
}

func TestMerge_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ProjectionResult)
	}{
		{name: "empty days", mutate: func(r *domain.ProjectionResult) { *r = domain.ProjectionResult{} }},
		{name: "short p05", mutate: func(r *domain.ProjectionResult) { r.P05 = r.P05[:2] }},
		{name: "long p95", mutate: func(r *domain.ProjectionResult) { r.P95 = append(r.P95, 1) }},
		{name: "missing p50", mutate: func(r *domain.ProjectionResult) { r.P50 = nil }},
		{name: "short sample path", mutate: func(r *domain.ProjectionResult) { r.SamplePaths[1] = r.SamplePaths[1][:1] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fan()
			tt.mutate(&r)
			_, err := Merge(r)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestTerminal_Labels(t *testing.T) {
	l := Terminal{Low: 1, Median: 2, High: 3}.Labels()
	assert.Equal(t, map[string]float64{"unlucky": 1, "expected": 2, "lucky": 3}, l)
}
