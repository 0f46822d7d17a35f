// Package httpadapter serves the flood-risk API together with the health,
// readiness and metrics endpoints.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/riskmap"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RiskMap is the read side of the risk-map service.
type RiskMap interface {
	RiskAreas(q riskmap.RiskAreaQuery) (domain.FeatureCollection, error)
	SimplifiedRiskAreas(lat, lon float64, zoomLevel int) (domain.FeatureCollection, error)
	NeighborhoodsWithWeather(ctx context.Context, q riskmap.NeighborhoodQuery) (domain.FeatureCollection, error)
	Forecast(ctx context.Context, q domain.ForecastQuery, date string) (riskmap.ForecastReport, error)
	DistrictsWithCoordinates(ctx context.Context, city, uf string) ([]domain.Neighborhood, error)
}

// Server exposes the API plus health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	riskMap    RiskMap
	geocoder   domain.Geocoder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, rm RiskMap, geocoder domain.Geocoder, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           requestLogger(logger, mux),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      60 * time.Second, // neighborhood fan-out plus rate-limited geocoding
			IdleTimeout:       60 * time.Second,
		},
		riskMap:  rm,
		geocoder: geocoder,
		logger:   logger,
	}

	mux.HandleFunc("GET /api/risk-areas", s.handleRiskAreas)
	mux.HandleFunc("GET /api/risk-areas/simplified", s.handleSimplifiedRiskAreas)
	mux.HandleFunc("GET /api/neighborhoods", s.handleNeighborhoods)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/districts", s.handleDistricts)
	mux.HandleFunc("GET /api/geocode", s.handleGeocode)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// AlwaysReady is the readiness checker used when no background pipeline runs.
type AlwaysReady struct{}

func (AlwaysReady) CheckReadiness(context.Context) error { return nil }
