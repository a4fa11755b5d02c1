package projection

// Layer kinds.
const (
	KindArea = "area"
	KindLine = "line"
)

// Layer roles in the cone.
const (
	RoleBand   = "band"
	RoleCutout = "cutout"
	RoleMedian = "median"
	RoleSample = "sample"
)

// FillNone disables an area's fill.
const FillNone = "none"

// BackgroundColor is the chart background the cutouts paint with.
const BackgroundColor = "#0f172a"

// MaxSampleLines caps how many sample paths are drawn.
const MaxSampleLines = 3

// Layer is one draw instruction. Layers must be drawn in slice order.
type Layer struct {
	Kind          string  `json:"kind"`
	Role          string  `json:"role"`
	DataKey       string  `json:"data_key"`
	Fill          string  `json:"fill,omitempty"`
	FillOpacity   float64 `json:"fill_opacity,omitempty"`
	Stroke        string  `json:"stroke,omitempty"`
	StrokeWidth   float64 `json:"stroke_width,omitempty"`
	StrokeOpacity float64 `json:"stroke_opacity,omitempty"`
}

// ConeLayers returns the draw plan for the fan chart. Each band is an area
// filled up to its upper percentile, then masked with an area at its lower
// percentile in the background color; the median is stroked on top with no
// fill, followed by up to MaxSampleLines sample paths.
func ConeLayers(samplePaths int) []Layer {
	layers := []Layer{
		{Kind: KindArea, Role: RoleBand, DataKey: "p95", Fill: "#1e293b", FillOpacity: 0.5},
		{Kind: KindArea, Role: RoleCutout, DataKey: "p05", Fill: BackgroundColor, FillOpacity: 1.0},
		{Kind: KindArea, Role: RoleBand, DataKey: "p75", Fill: "#3b82f6", FillOpacity: 0.15},
		{Kind: KindArea, Role: RoleCutout, DataKey: "p25", Fill: BackgroundColor, FillOpacity: 1.0},
		{Kind: KindArea, Role: RoleMedian, DataKey: "p50", Fill: FillNone, Stroke: "#2dd4bf", StrokeWidth: 2},
	}
	if samplePaths > MaxSampleLines {
		samplePaths = MaxSampleLines
	}
	for i := 0; i < samplePaths; i++ {
		layers = append(layers, Layer{
			Kind:          KindLine,
			Role:          RoleSample,
			DataKey:       SimKey(i),
			Stroke:        "#64748b",
			StrokeWidth:   1,
			StrokeOpacity: 0.4,
		})
	}
	return layers
}
