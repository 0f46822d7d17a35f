// Package brasilaberto lists the districts (bairros) of a municipality using
// the Brasil Aberto API.
package brasilaberto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
)

// DefaultURL is the Brasil Aberto v1 base URL.
const DefaultURL = "https://api.brasilaberto.com/v1"

const serviceName = "brasil-aberto"

// Client queries the Brasil Aberto districts endpoint. The API key is passed
// through as a bearer token.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Brasil Aberto client. An empty apiKey disables lookups.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if apiKey == "" {
		logger.Warn("BRASIL_ABERTO_API_KEY not set, district discovery disabled")
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Districts returns the districts of the municipality with the given IBGE
// code. Without an API key it returns an empty list and no error.
func (c *Client) Districts(ctx context.Context, ibgeCode string) ([]domain.District, error) {
	if !c.Enabled() {
		return nil, nil
	}
	target := "ibge=" + ibgeCode
	u := fmt.Sprintf("%s/districts-by-ibge-code/%s", c.baseURL, url.PathEscape(ibgeCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			c.logger.Error("brasil aberto rejected api key", "status", resp.StatusCode)
		case http.StatusNotFound:
			c.logger.Warn("brasil aberto has no districts for code", "ibge_code", ibgeCode)
		}
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", body)}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceName, "error").Inc()
		return nil, &domain.UpstreamError{Service: serviceName, Target: target, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := make([]domain.District, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, domain.District{ID: string(r.ID), Name: strings.TrimSpace(r.Name)})
	}
	outcome := "success"
	if len(out) == 0 {
		outcome = "empty"
	}
	c.metrics.UpstreamRequests.WithLabelValues(serviceName, outcome).Inc()
	return out, nil
}

// Brasil Aberto API response types. Pagination metadata is ignored.

type response struct {
	Results []district `json:"results"`
}

type district struct {
	ID   flexibleID `json:"id"`
	Name string     `json:"name"`
}

// flexibleID accepts both string and numeric ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}
