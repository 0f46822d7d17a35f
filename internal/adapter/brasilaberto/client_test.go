package brasilaberto

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

func testClient(apiKey, baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Districts_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/districts-by-ibge-code/3550308", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"id": "123", "name": "Tatuapé"},
				{"id": 124, "name": " Jabaquara "}
			],
			"metadata": {"total": 2, "page": 1}
		}`))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	c := testClient(testAPIKey, srv.URL, m)
	got, err := c.Districts(context.Background(), "3550308")
	require.NoError(t, err)

	assert.Equal(t, []domain.District{
		{ID: "123", Name: "Tatuapé"},
		{ID: "124", Name: "Jabaquara"},
	}, got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("brasil-aberto", "success")), 0.001)
}

func TestClient_Districts_NoAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := testClient("", srv.URL, observability.NewMetricsForTesting())
	assert.False(t, c.Enabled())

	got, err := c.Districts(context.Background(), "3550308")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called, "must not call the API without a key")
}

func TestClient_Districts_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient("expired", srv.URL, observability.NewMetricsForTesting())
	_, err := c.Districts(context.Background(), "3550308")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamRejected)

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, "ibge=3550308", upErr.Target)
}

func TestClient_Districts_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	c := testClient(testAPIKey, srv.URL, m)
	got, err := c.Districts(context.Background(), "3548500")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("brasil-aberto", "empty")), 0.001)
}

func TestClient_Districts_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	c := testClient(testAPIKey, baseURL, observability.NewMetricsForTesting())
	_, err := c.Districts(context.Background(), "3550308")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
