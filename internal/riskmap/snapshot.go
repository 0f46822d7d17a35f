package riskmap

import (
	"context"
	"fmt"

	"github.com/P4za/alagAlert/internal/domain"
)

// Snapshot kinds.
const (
	KindRiskAreas     = "risk-areas"
	KindNeighborhoods = "neighborhoods"
)

// City names a municipality for snapshot building.
type City struct {
	Name string
	UF   string
}

// BuildSnapshots renders today's risk-area collection and one neighborhood
// collection per city. Keys are "risk-areas:<date>" and
// "neighborhoods:<city>/<uf>:<date>".
func (s *Service) BuildSnapshots(ctx context.Context, cities []City) ([]domain.Snapshot, error) {
	now := s.clock.Now()
	date := now.In(s.loc).Format(domain.DateLayout)

	areas, err := s.RiskAreas(RiskAreaQuery{Lat: DefaultCenterLat, Lon: DefaultCenterLon, Date: date})
	if err != nil {
		return nil, fmt.Errorf("risk areas snapshot: %w", err)
	}
	snapshots := []domain.Snapshot{{
		Key:         fmt.Sprintf("%s:%s", KindRiskAreas, date),
		Kind:        KindRiskAreas,
		GeneratedAt: now,
		Collection:  areas,
	}}

	for _, c := range cities {
		fc, err := s.NeighborhoodsWithWeather(ctx, NeighborhoodQuery{City: c.Name, UF: c.UF, ForecastDays: 1, Date: date})
		if err != nil {
			return nil, fmt.Errorf("neighborhoods snapshot %s/%s: %w", c.Name, c.UF, err)
		}
		snapshots = append(snapshots, domain.Snapshot{
			Key:         fmt.Sprintf("%s:%s/%s:%s", KindNeighborhoods, c.Name, c.UF, date),
			Kind:        KindNeighborhoods,
			GeneratedAt: now,
			Collection:  fc,
		})
	}
	return snapshots, nil
}
