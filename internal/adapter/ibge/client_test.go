package ibge

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

const spMunicipalities = `[
	{"id": 3509502, "nome": "Campinas"},
	{"id": 3548500, "nome": "Santos"},
	{"id": 3549805, "nome": "São José do Rio Preto"},
	{"id": 3549904, "nome": "São José dos Campos"},
	{"id": 3550308, "nome": "São Paulo"}
]`

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func municipalitiesServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estados/SP/municipios", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(spMunicipalities))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Municipalities(t *testing.T) {
	m := observability.NewMetricsForTesting()
	c := testClient(municipalitiesServer(t).URL, m)

	got, err := c.Municipalities(context.Background(), " sp ")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, domain.Division{ID: "3509502", Name: "Campinas"}, got[0])
	assert.InDelta(t, 1, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("ibge", "success")), 0.001)
}

func TestClient_ResolveCityCode(t *testing.T) {
	c := testClient(municipalitiesServer(t).URL, observability.NewMetricsForTesting())

	tests := []struct {
		city string
		want string
	}{
		{"São Paulo", "3550308"},
		{"são paulo", "3550308"},
		{"Santos", "3548500"},
		{"São José", "3549805"}, // first partial match wins
		{"campos", "3549904"},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			code, err := c.ResolveCityCode(context.Background(), tt.city, "SP")
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestClient_ResolveCityCode_NotFound(t *testing.T) {
	c := testClient(municipalitiesServer(t).URL, observability.NewMetricsForTesting())

	_, err := c.ResolveCityCode(context.Background(), "Recife", "SP")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Recife/SP")
}

func TestClient_Municipalities_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.ResolveCityCode(context.Background(), "Santos", "SP")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamRejected)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Municipalities_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected": "object"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.Municipalities(context.Background(), "SP")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestMatchDivision_EmptyName(t *testing.T) {
	_, ok := MatchDivision([]domain.Division{{ID: "1", Name: "Santos"}}, "  ")
	assert.False(t, ok)
}

func TestMatchDivision_ExactBeatsEarlierPartial(t *testing.T) {
	divisions := []domain.Division{
		{ID: "1", Name: "Santos Dumont"},
		{ID: "2", Name: "Santos"},
	}
	d, ok := MatchDivision(divisions, "santos")
	require.True(t, ok)
	assert.Equal(t, "2", d.ID)
}
