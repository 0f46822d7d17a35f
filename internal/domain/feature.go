package domain

import "time"

// Style is the fixed visual treatment for a risk level.
type Style struct {
	FillColor    string
	FillOpacity  float64
	StrokeColor  string
	StrokeWeight int
}

var styles = map[RiskLevel]Style{
	RiskHigh:   {FillColor: "#dc2626", FillOpacity: 0.4, StrokeColor: "#991b1b", StrokeWeight: 2},
	RiskMedium: {FillColor: "#f59e0b", FillOpacity: 0.3, StrokeColor: "#d97706", StrokeWeight: 2},
	RiskLow:    {FillColor: "#10b981", FillOpacity: 0.2, StrokeColor: "#059669", StrokeWeight: 1},
}

// StyleFor returns the style for level. Unknown levels get the low style.
func StyleFor(level RiskLevel) Style {
	if s, ok := styles[level]; ok {
		return s
	}
	return styles[RiskLow]
}

// Geometry is a GeoJSON Polygon or Point.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// PolygonGeometry wraps a single exterior ring.
func PolygonGeometry(ring []Position) Geometry {
	return Geometry{Type: "Polygon", Coordinates: [][]Position{ring}}
}

// PointGeometry wraps a single position.
func PointGeometry(p Position) Geometry {
	return Geometry{Type: "Point", Coordinates: p}
}

// FeatureProperties carries the descriptive and styling payload of a feature.
// Simplified features set only Name and RiskLevel.
type FeatureProperties struct {
	Name         string      `json:"name"`
	City         string      `json:"city,omitempty"`
	UF           string      `json:"uf,omitempty"`
	RiskLevel    RiskLevel   `json:"riskLevel"`
	RiskScore    float64     `json:"riskScore,omitempty"`
	Date         string      `json:"date,omitempty"`
	Weather      *DaySummary `json:"weather,omitempty"`
	FillColor    string      `json:"fillColor,omitempty"`
	FillOpacity  float64     `json:"fillOpacity,omitempty"`
	StrokeColor  string      `json:"strokeColor,omitempty"`
	StrokeWeight int         `json:"strokeWeight,omitempty"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection with free-form metadata.
type FeatureCollection struct {
	Type     string         `json:"type"`
	Features []Feature      `json:"features"`
	Metadata map[string]any `json:"metadata"`
}

// NewFeatureCollection returns an empty collection with non-nil slices.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
		Metadata: map[string]any{},
	}
}

// ToFeature renders area at the given risk level for date (YYYY-MM-DD).
// In simplified mode the feature is the area's centroid carrying only the name
// and the base risk level; risk and date are ignored.
func ToFeature(area RiskArea, risk RiskLevel, date string, simplified bool) Feature {
	if simplified {
		return Feature{
			Type:     "Feature",
			Geometry: PointGeometry(area.Centroid()),
			Properties: FeatureProperties{
				Name:      area.Name,
				RiskLevel: area.BaseRisk,
			},
		}
	}

	geom := PointGeometry(area.Point)
	if area.IsPolygon() {
		geom = PolygonGeometry(area.Ring)
	}
	style := StyleFor(risk)
	return Feature{
		Type:     "Feature",
		Geometry: geom,
		Properties: FeatureProperties{
			Name:         area.Name,
			RiskLevel:    risk,
			RiskScore:    risk.Score(),
			Date:         date,
			FillColor:    style.FillColor,
			FillOpacity:  style.FillOpacity,
			StrokeColor:  style.StrokeColor,
			StrokeWeight: style.StrokeWeight,
		},
	}
}

// Snapshot is a rendered collection ready to be published.
type Snapshot struct {
	Key         string            `json:"key"`
	Kind        string            `json:"kind"` // "risk-areas" or "neighborhoods"
	GeneratedAt time.Time         `json:"generated_at"`
	Collection  FeatureCollection `json:"collection"`
}
