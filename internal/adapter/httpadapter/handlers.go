package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/riskmap"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func (s *Server) handleRiskAreas(w http.ResponseWriter, r *http.Request) {
	p := params{r: r}
	q := riskmap.RiskAreaQuery{
		Lat:       p.latitude("lat", riskmap.DefaultCenterLat),
		Lon:       p.longitude("lon", riskmap.DefaultCenterLon),
		RadiusKm:  p.float("radius_km", riskmap.DefaultRadiusKm),
		RiskLevel: p.riskLevel("risk_level"),
		Date:      p.str("date"),
	}
	if p.err != nil {
		s.writeError(w, r, p.err)
		return
	}
	fc, err := s.riskMap.RiskAreas(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, fc)
}

func (s *Server) handleSimplifiedRiskAreas(w http.ResponseWriter, r *http.Request) {
	p := params{r: r}
	lat := p.latitude("lat", riskmap.DefaultCenterLat)
	lon := p.longitude("lon", riskmap.DefaultCenterLon)
	zoom := p.integer("zoom_level", riskmap.DefaultZoomLevel)
	if p.err != nil {
		s.writeError(w, r, p.err)
		return
	}
	fc, err := s.riskMap.SimplifiedRiskAreas(lat, lon, zoom)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, fc)
}

func (s *Server) handleNeighborhoods(w http.ResponseWriter, r *http.Request) {
	p := params{r: r}
	q := riskmap.NeighborhoodQuery{
		City:         p.required("city"),
		UF:           p.str("uf"),
		ForecastDays: p.integer("forecast_days", domain.MinForecastDays),
		RiskLevel:    p.riskLevel("risk_level"),
		Date:         p.str("date"),
	}
	if p.err != nil {
		s.writeError(w, r, p.err)
		return
	}
	fc, err := s.riskMap.NeighborhoodsWithWeather(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, fc)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	p := params{r: r}
	q := domain.ForecastQuery{
		Lat:          p.requiredLatitude("lat"),
		Lon:          p.requiredLongitude("lon"),
		ForecastDays: p.integer("forecast_days", domain.MinForecastDays),
		Timezone:     p.str("timezone"),
	}
	date := p.str("date")
	if p.err != nil {
		s.writeError(w, r, p.err)
		return
	}
	report, err := s.riskMap.Forecast(r.Context(), q, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	p := params{r: r}
	city := p.required("city")
	uf := p.required("uf")
	if p.err != nil {
		s.writeError(w, r, p.err)
		return
	}
	districts, err := s.riskMap.DistrictsWithCoordinates(r.Context(), city, uf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"city":      city,
		"uf":        strings.ToUpper(uf),
		"total":     len(districts),
		"districts": districts,
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	p := params{r: r}
	query := p.required("q")
	if p.err != nil {
		s.writeError(w, r, p.err)
		return
	}
	result, err := s.geocoder.ForwardGeocode(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

// statusFor maps the domain error taxonomy to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamRejected), errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError echoes client errors. Server and upstream failures get a generic
// message; the detail, which may carry an upstream response body, is only
// logged under the request id.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	id := w.Header().Get(requestIDHeader)
	s.logger.Error("request failed", "request_id", id, "path", r.URL.Path, "status", status, "error", err)
	msg := http.StatusText(status)
	if status == http.StatusBadGateway {
		msg = "upstream service unavailable"
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg, "request_id": id})
}

// params reads query parameters, keeping the first parse error.
type params struct {
	r   *http.Request
	err error
}

func (p *params) str(name string) string {
	return strings.TrimSpace(p.r.URL.Query().Get(name))
}

func (p *params) fail(name, format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("parameter %s: %s: %w", name, fmt.Sprintf(format, args...), domain.ErrInvalidInput)
	}
}

func (p *params) required(name string) string {
	v := p.str(name)
	if v == "" {
		p.fail(name, "required")
	}
	return v
}

func (p *params) float(name string, def float64) float64 {
	v := p.str(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, "not a number: %q", v)
		return def
	}
	return f
}

func (p *params) integer(name string, def int) int {
	v := p.str(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, "not an integer: %q", v)
		return def
	}
	return n
}

func (p *params) inRange(name string, v, limit float64) float64 {
	if v < -limit || v > limit {
		p.fail(name, "%v outside [-%v, %v]", v, limit, limit)
	}
	return v
}

func (p *params) latitude(name string, def float64) float64 {
	return p.inRange(name, p.float(name, def), 90)
}

func (p *params) longitude(name string, def float64) float64 {
	return p.inRange(name, p.float(name, def), 180)
}

func (p *params) requiredLatitude(name string) float64 {
	if p.required(name) == "" {
		return 0
	}
	return p.latitude(name, 0)
}

func (p *params) requiredLongitude(name string) float64 {
	if p.required(name) == "" {
		return 0
	}
	return p.longitude(name, 0)
}

func (p *params) riskLevel(name string) *domain.RiskLevel {
	v := p.str(name)
	if v == "" {
		return nil
	}
	level, err := domain.ParseRiskLevel(v)
	if err != nil {
		p.fail(name, "want low, medium or high, got %q", v)
		return nil
	}
	return &level
}
