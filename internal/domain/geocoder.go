package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence,omitempty"` // 0.0–1.0, 0 when not reported
}

// Geocoder resolves free-text place queries to coordinates.
type Geocoder interface {
	// ForwardGeocode returns the best match for query, or an error matching
	// ErrNotFound when the provider has none.
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
}

// Division is an administrative division (municipality) from the statistics API.
type Division struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// District is a named sub-area of a municipality from the districts API.
type District struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
