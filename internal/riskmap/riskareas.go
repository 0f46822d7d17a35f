package riskmap

import (
	"github.com/P4za/alagAlert/internal/domain"
)

// RiskAreaQuery selects the catalog risk areas to render.
type RiskAreaQuery struct {
	Lat       float64
	Lon       float64
	RadiusKm  float64           // echoed in metadata; areas are not distance filtered
	RiskLevel *domain.RiskLevel // keep only areas at this adjusted level
	Date      string            // YYYY-MM-DD, today when empty
}

// RiskAreas renders every catalog area with its base risk shifted for the
// requested day. A malformed date is domain.ErrInvalidInput.
func (s *Service) RiskAreas(q RiskAreaQuery) (domain.FeatureCollection, error) {
	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	date, days, err := s.resolveDate(q.Date)
	if err != nil {
		return domain.FeatureCollection{}, err
	}

	fc := domain.NewFeatureCollection()
	for _, area := range s.catalog.RiskAreas() {
		risk := domain.AdjustRiskByDay(area.BaseRisk, days)
		if q.RiskLevel != nil && risk != *q.RiskLevel {
			continue
		}
		fc.Features = append(fc.Features, domain.ToFeature(area, risk, date, false))
	}

	fc.Metadata = map[string]any{
		"center":            map[string]float64{"lat": q.Lat, "lon": q.Lon},
		"radius_km":         q.RadiusKm,
		"filter_risk_level": riskFilterValue(q.RiskLevel),
		"date":              date,
		"days_from_today":   days,
		"total_features":    len(fc.Features),
	}
	return fc, nil
}

// SimplifiedRiskAreas returns the full collection for detailed zoom levels
// (12 and above) and centroid points with base risk otherwise.
func (s *Service) SimplifiedRiskAreas(lat, lon float64, zoomLevel int) (domain.FeatureCollection, error) {
	if zoomLevel >= simplifiedZoomThreshold {
		return s.RiskAreas(RiskAreaQuery{Lat: lat, Lon: lon})
	}

	fc := domain.NewFeatureCollection()
	for _, area := range s.catalog.RiskAreas() {
		fc.Features = append(fc.Features, domain.ToFeature(area, area.BaseRisk, "", true))
	}
	fc.Metadata = map[string]any{
		"simplified":     true,
		"zoom_level":     zoomLevel,
		"total_features": len(fc.Features),
	}
	return fc, nil
}
