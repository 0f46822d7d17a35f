// Package catalog holds the static reference data: known flood-risk areas and
// the neighborhoods of supported cities. The default catalog is embedded; an
// alternative YAML file can be loaded with LoadFile.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/P4za/alagAlert/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Catalog is the parsed reference data. It is read-only after Load.
type Catalog struct {
	areas  []domain.RiskArea
	cities []City
}

// City groups the known neighborhoods of one municipality.
type City struct {
	Name          string                `yaml:"city"`
	UF            string                `yaml:"uf"`
	Neighborhoods []domain.Neighborhood `yaml:"places"`
}

// YAML document types.

type document struct {
	RiskAreas     []areaDoc `yaml:"risk_areas"`
	Neighborhoods []City    `yaml:"neighborhoods"`
}

type areaDoc struct {
	Name     string            `yaml:"name"`
	BaseRisk *domain.RiskLevel `yaml:"base_risk"`
	Polygon  []domain.Position `yaml:"polygon"`
	Point    *domain.Position  `yaml:"point"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// LoadFile parses a catalog YAML file from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var errs []error
	c := &Catalog{cities: doc.Neighborhoods}
	for i, a := range doc.RiskAreas {
		area := domain.RiskArea{Name: a.Name, Ring: a.Polygon}
		if a.BaseRisk == nil {
			errs = append(errs, fmt.Errorf("risk_areas[%d] %q: missing base_risk", i, a.Name))
		} else {
			area.BaseRisk = *a.BaseRisk
		}
		if a.Point != nil {
			area.Point = *a.Point
		}
		if len(a.Polygon) == 0 && a.Point == nil {
			errs = append(errs, fmt.Errorf("risk_areas[%d] %q: needs a polygon or a point", i, a.Name))
		}
		c.areas = append(c.areas, area)
	}
	if err := errors.Join(append(errs, c.Validate())...); err != nil {
		return nil, err
	}
	return c, nil
}

// RiskAreas returns the known risk areas in catalog order.
func (c *Catalog) RiskAreas() []domain.RiskArea {
	return c.areas
}

// Cities returns every city with known neighborhoods.
func (c *Catalog) Cities() []City {
	return c.cities
}

// Lookup finds a city by name, matched case-insensitively. An empty uf
// matches any state.
func (c *Catalog) Lookup(city, uf string) (City, bool) {
	city = strings.TrimSpace(city)
	uf = strings.TrimSpace(uf)
	for _, ct := range c.cities {
		if strings.EqualFold(ct.Name, city) && (uf == "" || strings.EqualFold(ct.UF, uf)) {
			return ct, true
		}
	}
	return City{}, false
}

// Neighborhoods returns the known neighborhoods of city, or nil.
func (c *Catalog) Neighborhoods(city, uf string) []domain.Neighborhood {
	ct, _ := c.Lookup(city, uf)
	return ct.Neighborhoods
}

// Validate checks every area and neighborhood and returns all problems joined.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool)

	for i, a := range c.areas {
		label := fmt.Sprintf("risk_areas[%d] %q", i, a.Name)
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: missing name", label))
		}
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate name", label))
		}
		seen[a.Name] = true
		if !a.BaseRisk.Valid() {
			errs = append(errs, fmt.Errorf("%s: invalid base_risk", label))
		}
		if a.IsPolygon() {
			errs = append(errs, validateRing(label, a.Ring)...)
		} else if err := validatePosition(label, a.Point); err != nil {
			errs = append(errs, err)
		}
	}

	for i, ct := range c.cities {
		label := fmt.Sprintf("neighborhoods[%d] %q", i, ct.Name)
		if strings.TrimSpace(ct.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: missing city", label))
		}
		if len(ct.UF) != 2 {
			errs = append(errs, fmt.Errorf("%s: uf must have 2 letters", label))
		}
		for j, n := range ct.Neighborhoods {
			nLabel := fmt.Sprintf("%s places[%d] %q", label, j, n.Name)
			if strings.TrimSpace(n.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: missing name", nLabel))
			}
			if err := validatePosition(nLabel, domain.Position{n.Lon, n.Lat}); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func validateRing(label string, ring []domain.Position) []error {
	var errs []error
	if len(ring) < 4 {
		errs = append(errs, fmt.Errorf("%s: polygon needs at least 4 positions, got %d", label, len(ring)))
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		errs = append(errs, fmt.Errorf("%s: polygon ring is not closed", label))
	}
	for _, p := range ring {
		if err := validatePosition(label, p); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return errs
}

func validatePosition(label string, p domain.Position) error {
	if p.Lat() < -90 || p.Lat() > 90 || p.Lon() < -180 || p.Lon() > 180 {
		return fmt.Errorf("%s: coordinate [%g, %g] out of range", label, p.Lon(), p.Lat())
	}
	if p.Lat() == 0 && p.Lon() == 0 {
		return fmt.Errorf("%s: missing coordinates", label)
	}
	return nil
}
