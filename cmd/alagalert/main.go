package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/P4za/alagAlert/internal/adapter/brasilaberto"
	"github.com/P4za/alagAlert/internal/adapter/geocoding"
	"github.com/P4za/alagAlert/internal/adapter/httpadapter"
	"github.com/P4za/alagAlert/internal/adapter/ibge"
	kafkaadapter "github.com/P4za/alagAlert/internal/adapter/kafka"
	"github.com/P4za/alagAlert/internal/adapter/mapbox"
	"github.com/P4za/alagAlert/internal/adapter/nominatim"
	"github.com/P4za/alagAlert/internal/adapter/openmeteo"
	"github.com/P4za/alagAlert/internal/catalog"
	"github.com/P4za/alagAlert/internal/config"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/P4za/alagAlert/internal/pipeline"
	"github.com/P4za/alagAlert/internal/riskmap"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "risk_areas", len(cat.RiskAreas()), "cities", len(cat.Cities()))

	forecasts := openmeteo.NewCachedForecaster(
		openmeteo.NewClient(cfg.OpenMeteoURL, cfg.ForecastTimeout, metrics, logger),
		cfg.ForecastCacheSize, cfg.ForecastCacheTTL, clock, metrics,
	)
	cities := ibge.NewClient(cfg.IBGEURL, cfg.IBGETimeout, metrics, logger)
	districts := brasilaberto.NewClient(cfg.BrasilAbertoAPIKey, cfg.BrasilAbertoURL, cfg.BrasilAbertoTimeout, metrics, logger)
	geocoder := newGeocoder(cfg, metrics, logger)

	svc := riskmap.New(cat, forecasts, cities, districts, geocoder, riskmap.Options{
		Clock:         clock,
		Location:      cfg.Location(),
		DistrictLimit: cfg.DistrictLimit,
		Concurrency:   cfg.NeighborhoodConcurrency,
	}, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  sharedobs.ReadinessChecker = httpadapter.AlwaysReady{}
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(svc, writer, snapshotCities(cfg.SnapshotCities), cfg.SnapshotInterval, clock, logger, metrics)
		ready = p

		// Start snapshot pipeline.
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("snapshot publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, geocoder, ready, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(path)
}

// newGeocoder builds the configured provider behind the rate limiter and the
// result cache. Cache hits skip the limiter.
func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	var provider domain.Geocoder
	switch cfg.Geocoder {
	case "mapbox":
		provider = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	default:
		provider = nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, metrics, logger)
	}
	logger.Info("geocoder configured", "provider", cfg.Geocoder, "rps", cfg.GeocoderRPS, "cache_size", cfg.GeocoderCacheSize)
	return geocoding.NewCachedGeocoder(geocoding.NewRateLimited(provider, cfg.GeocoderRPS), cfg.GeocoderCacheSize, metrics)
}

func snapshotCities(refs []config.CityRef) []riskmap.City {
	out := make([]riskmap.City, len(refs))
	for i, r := range refs {
		out[i] = riskmap.City{Name: r.Name, UF: r.UF}
	}
	return out
}
