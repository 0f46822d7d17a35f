// Package ibge resolves Brazilian municipality names to IBGE codes using the
// IBGE localities API.
package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
)

// DefaultURL is the public IBGE localities endpoint.
const DefaultURL = "https://servicodados.ibge.gov.br/api/v1/localidades"

const serviceName = "ibge"

// Client queries the IBGE localities API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an IBGE client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Municipalities lists the municipalities of a state (UF).
func (c *Client) Municipalities(ctx context.Context, uf string) ([]domain.Division, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	target := "uf=" + uf
	u := fmt.Sprintf("%s/estados/%s/municipios", c.baseURL, url.PathEscape(uf))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", body)}
	}

	var items []municipality
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := make([]domain.Division, 0, len(items))
	for _, m := range items {
		out = append(out, domain.Division{ID: strconv.FormatInt(m.ID, 10), Name: m.Nome})
	}
	outcome := "success"
	if len(out) == 0 {
		outcome = "empty"
	}
	c.metrics.UpstreamRequests.WithLabelValues(serviceName, outcome).Inc()
	return out, nil
}

// ResolveCityCode returns the IBGE code of city in uf. An exact
// case-insensitive name match wins; otherwise the first municipality whose
// name contains city is used. No match is domain.ErrNotFound.
func (c *Client) ResolveCityCode(ctx context.Context, city, uf string) (string, error) {
	divisions, err := c.Municipalities(ctx, uf)
	if err != nil {
		return "", err
	}
	if d, ok := MatchDivision(divisions, city); ok {
		return d.ID, nil
	}
	c.logger.Warn("ibge code not found", "city", city, "uf", uf)
	return "", fmt.Errorf("ibge code for %s/%s: %w", city, uf, domain.ErrNotFound)
}

// MatchDivision picks the division named name: exact match first, then the
// first partial match in list order.
func MatchDivision(divisions []domain.Division, name string) (domain.Division, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return domain.Division{}, false
	}
	for _, d := range divisions {
		if strings.ToLower(d.Name) == needle {
			return d, true
		}
	}
	for _, d := range divisions {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, true
		}
	}
	return domain.Division{}, false
}

// IBGE API response types.

type municipality struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}
