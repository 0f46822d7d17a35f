package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentroid_ExcludesClosingVertex(t *testing.T) {
	// Averaging all five ring positions would give (0.8, 0.8).
	area := RiskArea{Ring: []Position{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	assert.Equal(t, Position{1, 1}, area.Centroid())

	triangle := RiskArea{Ring: []Position{{0, 0}, {3, 0}, {0, 3}, {0, 0}}}
	assert.Equal(t, Position{1, 1}, triangle.Centroid())
}

func TestCentroid_Point(t *testing.T) {
	area := RiskArea{Point: Position{-46.63, -23.55}}
	assert.False(t, area.IsPolygon())
	assert.Equal(t, Position{-46.63, -23.55}, area.Centroid())
}

func TestSquareAround(t *testing.T) {
	ring := SquareAround(-23.5320, -46.5650, 1.5)

	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4], "ring must be closed")

	half := 1.5 / 111.0 / 2
	assert.InDelta(t, -46.5650-half, ring[0].Lon(), 1e-12)
	assert.InDelta(t, -23.5320-half, ring[0].Lat(), 1e-12)
	assert.InDelta(t, -46.5650+half, ring[2].Lon(), 1e-12)
	assert.InDelta(t, -23.5320+half, ring[2].Lat(), 1e-12)

	c := RiskArea{Ring: ring}.Centroid()
	assert.InDelta(t, -46.5650, c.Lon(), 1e-12)
	assert.InDelta(t, -23.5320, c.Lat(), 1e-12)
}
