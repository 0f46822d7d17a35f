// Command validate checks a catalog YAML file before it is deployed with
// CATALOG_PATH: schema and geometry, neighborhood uniqueness, neighborhood
// spread around each city, and non-degenerate risk-area polygons.
//
// Usage:
//
//	go run ./cmd/validate -catalog deploy/catalog.yaml -max-km 60
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/P4za/alagAlert/internal/catalog"
	"github.com/P4za/alagAlert/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("catalog", "", "catalog YAML file (default: embedded catalog)")
	maxKm := flag.Float64("max-km", 60, "maximum distance of a neighborhood from its city's center")
	flag.Parse()

	os.Exit(run(*path, *maxKm))
}

func run(path string, maxKm float64) int {
	fmt.Println("=== Catalog Validation ===")
	source := path
	if source == "" {
		source = "(embedded)"
	}
	fmt.Printf("Catalog: %s\n\n", source)

	structure := &phase{name: "Structure and geometry"}
	cat, err := load(path)
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			structure.errorf("%s", line)
		}
	}

	phases := []*phase{structure}
	if cat != nil {
		phases = append(phases,
			validateUniqueness(cat),
			validateSpread(cat, maxKm),
			validateFootprints(cat),
		)
	}

	allPassed := report(phases)
	if cat != nil {
		places := 0
		for _, c := range cat.Cities() {
			places += len(c.Neighborhoods)
		}
		fmt.Printf("\nRisk areas: %d, cities: %d, neighborhoods: %d\n", len(cat.RiskAreas()), len(cat.Cities()), places)
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func load(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(path)
}

func report(phases []*phase) bool {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}
	return allPassed
}

// validateUniqueness flags repeated cities and repeated neighborhood names
// within a city. Lookups are case-insensitive, so duplicates are too.
func validateUniqueness(cat *catalog.Catalog) *phase {
	p := &phase{name: "Neighborhood uniqueness"}
	cities := map[string]bool{}
	for _, c := range cat.Cities() {
		key := strings.ToLower(c.Name + "/" + c.UF)
		if cities[key] {
			p.errorf("city %s/%s listed more than once", c.Name, c.UF)
		}
		cities[key] = true

		if len(c.Neighborhoods) == 0 {
			p.errorf("city %s/%s has no neighborhoods", c.Name, c.UF)
		}
		names := map[string]bool{}
		for _, n := range c.Neighborhoods {
			k := strings.ToLower(strings.TrimSpace(n.Name))
			if names[k] {
				p.errorf("%s/%s: duplicate neighborhood %q", c.Name, c.UF, n.Name)
			}
			names[k] = true
		}
	}
	return p
}

// validateSpread flags neighborhoods far from their city's median position,
// which usually means swapped or mistyped coordinates.
func validateSpread(cat *catalog.Catalog, maxKm float64) *phase {
	p := &phase{name: fmt.Sprintf("Neighborhood spread (<= %g km)", maxKm)}
	for _, c := range cat.Cities() {
		if len(c.Neighborhoods) == 0 {
			continue
		}
		lats := make([]float64, len(c.Neighborhoods))
		lons := make([]float64, len(c.Neighborhoods))
		for i, n := range c.Neighborhoods {
			lats[i], lons[i] = n.Lat, n.Lon
		}
		lat, lon := median(lats), median(lons)

		for _, n := range c.Neighborhoods {
			if d := distanceKm(lat, lon, n.Lat, n.Lon); d > maxKm {
				p.errorf("%s/%s: %q is %.1f km from the city center", c.Name, c.UF, n.Name, d)
			}
		}
	}
	return p
}

// validateFootprints flags polygons with fewer than three distinct vertices or
// no enclosed area.
func validateFootprints(cat *catalog.Catalog) *phase {
	p := &phase{name: "Risk area footprints"}
	for _, a := range cat.RiskAreas() {
		if !a.IsPolygon() {
			continue
		}
		distinct := map[domain.Position]bool{}
		for _, v := range a.Ring {
			distinct[v] = true
		}
		if len(distinct) < 3 {
			p.errorf("%q: polygon has %d distinct vertices", a.Name, len(distinct))
			continue
		}
		if ringArea(a.Ring) < minRingArea {
			p.errorf("%q: polygon encloses no area", a.Name)
		}
	}
	return p
}

// minRingArea is roughly one square meter, in square degrees.
const minRingArea = 1e-10

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// distanceKm is an equirectangular approximation, accurate at city scale.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const kmPerDegree = 111.0
	dLat := lat2 - lat1
	dLon := (lon2 - lon1) * math.Cos((lat1+lat2)/2*math.Pi/180)
	return math.Hypot(dLat, dLon) * kmPerDegree
}

// ringArea is the shoelace area of a closed ring in square degrees.
func ringArea(ring []domain.Position) float64 {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += ring[i].Lon()*ring[i+1].Lat() - ring[i+1].Lon()*ring[i].Lat()
	}
	return math.Abs(sum) / 2
}
