package domain

// Position is a [lon, lat] pair, GeoJSON order.
type Position [2]float64

// Lon returns the longitude.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude.
func (p Position) Lat() float64 { return p[1] }

// RiskArea is a named area with a static base risk. Ring is a closed polygon
// ring (first position equals last); when it is empty the area is the single
// position Point.
type RiskArea struct {
	Name     string
	Ring     []Position
	Point    Position
	BaseRisk RiskLevel
}

// IsPolygon reports whether the area carries a ring.
func (a RiskArea) IsPolygon() bool {
	return len(a.Ring) > 0
}

// Centroid returns the mean of the ring's distinct vertices, or the point for
// point areas. The closing vertex is deliberately left out rather than
// averaging every ring position: counting it would weight the first vertex
// twice and pull the centroid toward it.
func (a RiskArea) Centroid() Position {
	if !a.IsPolygon() {
		return a.Point
	}
	ring := a.Ring
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	var lon, lat float64
	for _, p := range ring {
		lon += p.Lon()
		lat += p.Lat()
	}
	n := float64(len(ring))
	return Position{lon / n, lat / n}
}

// Neighborhood is a named point inside a city.
type Neighborhood struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// kmPerDegree approximates one degree of latitude.
const kmPerDegree = 111.0

// SquareAround builds a closed square ring of side sizeKm centred on lat/lon.
func SquareAround(lat, lon, sizeKm float64) []Position {
	half := sizeKm / kmPerDegree / 2
	return []Position{
		{lon - half, lat - half}, // SW
		{lon + half, lat - half}, // SE
		{lon + half, lat + half}, // NE
		{lon - half, lat + half}, // NW
		{lon - half, lat - half}, // SW, closes the ring
	}
}
