// Package projection adapts Monte Carlo fans from the engine into a single
// time-indexed table and the layered draw plan used to render the cone.
package projection

import (
	"encoding/json"
	"strconv"

	"github.com/aristath/scenariodesk/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultDays is the projection horizon: one trading year.
	DefaultDays = 252
	// DefaultSimulationCount is reported when the engine omits a count.
	DefaultSimulationCount = 5000

	endpoint = "/simulation/monte_carlo"
)

// TimePoint is one row of the merged table. Sims holds each sample path's
// value at this day, keyed sim0, sim1, ... on the wire.
type TimePoint struct {
	Day  float64
	P05  float64
	P25  float64
	P50  float64
	P75  float64
	P95  float64
	Sims []float64
}

// MarshalJSON flattens the point so each series is a top-level key.
func (p TimePoint) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, 6+len(p.Sims))
	m["day"] = p.Day
	m["p05"] = p.P05
	m["p25"] = p.P25
	m["p50"] = p.P50
	m["p75"] = p.P75
	m["p95"] = p.P95
	for i, v := range p.Sims {
		m[SimKey(i)] = v
	}
	return json.Marshal(m)
}

// SimKey names the series of sample path i.
func SimKey(i int) string {
	return "sim" + strconv.Itoa(i)
}

// Terminal summarizes the last day of the fan.
type Terminal struct {
	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`
}

// Labels maps the terminal values to their narrative names.
func (t Terminal) Labels() map[string]float64 {
	return map[string]float64{"unlucky": t.Low, "expected": t.Median, "lucky": t.High}
}

// Dispersion describes the terminal values of the sample paths.
type Dispersion struct {
	Paths  int     `json:"paths"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Projection is the render-ready form of a Monte Carlo result.
type Projection struct {
	Points     []TimePoint `json:"points"`
	Terminal   Terminal    `json:"terminal"`
	Count      int         `json:"count"`
	Dispersion *Dispersion `json:"dispersion,omitempty"`
	Layers     []Layer     `json:"layers"`
}

// Merge zips the percentile series and sample paths into one point per day.
// Any length mismatch, or an empty fan, is a malformed response.
func Merge(r domain.ProjectionResult) (Projection, error) {
	n := len(r.Days)
	if n == 0 {
		return Projection{}, domain.Malformed(endpoint, "days is empty")
	}

	series := []struct {
		name string
		vals []float64
	}{
		{"p05", r.P05}, {"p25", r.P25}, {"p50", r.P50}, {"p75", r.P75}, {"p95", r.P95},
	}
	for _, s := range series {
		if len(s.vals) != n {
			return Projection{}, domain.Malformed(endpoint, "%s has %d points, days has %d", s.name, len(s.vals), n)
		}
	}
	for k, path := range r.SamplePaths {
		if len(path) != n {
			return Projection{}, domain.Malformed(endpoint, "sample path %d has %d points, days has %d", k, len(path), n)
		}
	}

	points := make([]TimePoint, n)
	for i := range r.Days {
		p := TimePoint{Day: r.Days[i], P05: r.P05[i], P25: r.P25[i], P50: r.P50[i], P75: r.P75[i], P95: r.P95[i]}
		if len(r.SamplePaths) > 0 {
			p.Sims = make([]float64, len(r.SamplePaths))
			for k, path := range r.SamplePaths {
				p.Sims[k] = path[i]
			}
		}
		points[i] = p
	}

	count := r.SimulationCount
	if count <= 0 {
		count = DefaultSimulationCount
	}

	last := n - 1
	return Projection{
		Points:     points,
		Terminal:   Terminal{Low: r.P05[last], Median: r.P50[last], High: r.P95[last]},
		Count:      count,
		Dispersion: dispersion(r.SamplePaths),
		Layers:     ConeLayers(len(r.SamplePaths)),
	}, nil
}

func dispersion(paths [][]float64) *Dispersion {
	if len(paths) == 0 {
		return nil
	}
	terminals := make([]float64, len(paths))
	for k, path := range paths {
		terminals[k] = path[len(path)-1]
	}
	d := &Dispersion{Paths: len(paths)}
	if len(terminals) == 1 {
		d.Mean = terminals[0]
		return d
	}
	d.Mean, d.StdDev = stat.MeanStdDev(terminals, nil)
	return d
}
