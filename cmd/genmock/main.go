// Command genmock renders the catalog's risk-area collections for a run of
// days and writes them as a JSON fixture. It uses the real riskmap service on
// a fixed clock, so the output matches what the API returns for those dates.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -today 2026-10-18 \
//	  -days 7 \
//	  -out data/mock/risk_areas_week.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/P4za/alagAlert/internal/catalog"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/P4za/alagAlert/internal/riskmap"
	"github.com/jonboulle/clockwork"
)

// fixture is the file layout written by genmock.
type fixture struct {
	Today      string                   `json:"today"`
	Timezone   string                   `json:"timezone"`
	Simplified domain.FeatureCollection `json:"simplified"`
	Days       []fixtureDay             `json:"days"`
}

type fixtureDay struct {
	Date       string                   `json:"date"`
	Offset     int                      `json:"days_from_today"`
	Collection domain.FeatureCollection `json:"collection"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	today := flag.String("today", "2026-10-18", "date treated as today (YYYY-MM-DD)")
	days := flag.Int("days", 7, "number of days to render, starting at -from")
	from := flag.Int("from", -1, "offset of the first rendered day relative to -today")
	tz := flag.String("tz", domain.DefaultTimezone, "IANA timezone for calendar days")
	catalogPath := flag.String("catalog", "", "catalog YAML file (default: embedded catalog)")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *out == "" || *days < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flag -out or non-positive -days")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	start, err := domain.ParseDate(*today, loc)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// Noon keeps the fixed clock well inside the calendar day.
	clock := clockwork.NewFakeClockAt(start.Add(12 * time.Hour))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := riskmap.New(cat, nil, nil, nil, nil, riskmap.Options{Clock: clock, Location: loc},
		observability.NewMetricsForTesting(), logger)

	fx, err := render(svc, start, *from, *days)
	if err != nil {
		return err
	}
	fx.Timezone = loc.String()

	if err := writeJSON(*out, fx); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d days, %d areas)", *out, len(fx.Days), len(cat.RiskAreas()))

	printStats(fx)
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(path)
}

func render(svc *riskmap.Service, start time.Time, from, days int) (fixture, error) {
	fx := fixture{Today: svc.Today()}

	simplified, err := svc.SimplifiedRiskAreas(riskmap.DefaultCenterLat, riskmap.DefaultCenterLon, riskmap.DefaultZoomLevel)
	if err != nil {
		return fixture{}, fmt.Errorf("simplified: %w", err)
	}
	fx.Simplified = simplified

	for i := range days {
		offset := from + i
		date := start.AddDate(0, 0, offset).Format(domain.DateLayout)
		fc, err := svc.RiskAreas(riskmap.RiskAreaQuery{
			Lat:  riskmap.DefaultCenterLat,
			Lon:  riskmap.DefaultCenterLon,
			Date: date,
		})
		if err != nil {
			return fixture{}, fmt.Errorf("risk areas for %s: %w", date, err)
		}
		fx.Days = append(fx.Days, fixtureDay{Date: date, Offset: offset, Collection: fc})
	}
	return fx, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats prints an area-by-day grid of risk levels for updating test
// assertions.
func printStats(fx fixture) {
	fmt.Println("\n=== Risk levels by day ===")
	if len(fx.Days) == 0 {
		return
	}

	header := []string{fmt.Sprintf("%-28s", "area")}
	for _, d := range fx.Days {
		header = append(header, fmt.Sprintf("%+d", d.Offset))
	}
	fmt.Println(strings.Join(header, "\t"))

	for i, f := range fx.Days[0].Collection.Features {
		row := []string{fmt.Sprintf("%-28s", f.Properties.Name)}
		for _, d := range fx.Days {
			row = append(row, d.Collection.Features[i].Properties.RiskLevel.String())
		}
		fmt.Println(strings.Join(row, "\t"))
	}

	fmt.Println()
	for _, d := range fx.Days {
		counts := map[domain.RiskLevel]int{}
		for _, f := range d.Collection.Features {
			counts[f.Properties.RiskLevel]++
		}
		fmt.Printf("%s (%+d): high=%d medium=%d low=%d\n", d.Date, d.Offset,
			counts[domain.RiskHigh], counts[domain.RiskMedium], counts[domain.RiskLow])
	}
}
