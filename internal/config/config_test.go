package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.OpenMeteoURL)
	assert.Equal(t, 10*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 500, cfg.ForecastCacheSize)
	assert.Equal(t, 600*time.Second, cfg.ForecastCacheTTL)
	assert.Equal(t, "America/Sao_Paulo", cfg.DefaultTimezone)

	assert.Equal(t, "https://servicodados.ibge.gov.br/api/v1/localidades", cfg.IBGEURL)
	assert.Equal(t, "https://api.brasilaberto.com/v1", cfg.BrasilAbertoURL)
	assert.Empty(t, cfg.BrasilAbertoAPIKey)
	assert.Equal(t, 15*time.Second, cfg.BrasilAbertoTimeout)
	assert.Equal(t, 15, cfg.DistrictLimit)

	assert.Equal(t, "nominatim", cfg.Geocoder)
	assert.Equal(t, "AlagAlert/1.0", cfg.NominatimUserAgent)
	assert.Equal(t, 10*time.Second, cfg.NominatimTimeout)
	assert.Equal(t, 0.9, cfg.GeocoderRPS)
	assert.Equal(t, 1000, cfg.GeocoderCacheSize)
	assert.Equal(t, 4, cfg.NeighborhoodConcurrency)
	assert.Empty(t, cfg.CatalogPath)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "flood-risk-snapshots", cfg.KafkaSnapshotTopic)
	assert.Equal(t, 10*time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, []CityRef{
		{Name: "São Paulo", UF: "SP"},
		{Name: "Campinas", UF: "SP"},
		{Name: "Santos", UF: "SP"},
	}, cfg.SnapshotCities)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("OPEN_METEO_URL", "http://meteo.local/v1/forecast")
	t.Setenv("FORECAST_CACHE_SIZE", "50")
	t.Setenv("FORECAST_CACHE_TTL", "1m")
	t.Setenv("DEFAULT_TIMEZONE", "UTC")
	t.Setenv("BRASIL_ABERTO_API_KEY", "secret")
	t.Setenv("GEOCODER", "Mapbox")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("GEOCODER_RPS", "2.5")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("SNAPSHOT_CITIES", "Recife/pe")
	t.Setenv("CATALOG_PATH", "/etc/alagalert/catalog.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://meteo.local/v1/forecast", cfg.OpenMeteoURL)
	assert.Equal(t, 50, cfg.ForecastCacheSize)
	assert.Equal(t, time.Minute, cfg.ForecastCacheTTL)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "secret", cfg.BrasilAbertoAPIKey)
	assert.Equal(t, "mapbox", cfg.Geocoder)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 2.5, cfg.GeocoderRPS)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []CityRef{{Name: "Recife", UF: "PE"}}, cfg.SnapshotCities)
	assert.Equal(t, "/etc/alagalert/catalog.yaml", cfg.CatalogPath)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"FORECAST_TIMEOUT", "FORECAST_CACHE_TTL", "IBGE_TIMEOUT", "BRASIL_ABERTO_TIMEOUT", "NOMINATIM_TIMEOUT", "MAPBOX_TIMEOUT", "SNAPSHOT_INTERVAL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidInts(t *testing.T) {
	for _, key := range []string{"FORECAST_CACHE_SIZE", "GEOCODER_CACHE_SIZE", "DISTRICT_LIMIT", "NEIGHBORHOOD_CONCURRENCY"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidGeocoderRPS(t *testing.T) {
	t.Setenv("GEOCODER_RPS", "fast")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_RPS")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_TIMEZONE")
}

func TestLoad_MapboxWithoutToken(t *testing.T) {
	t.Setenv("GEOCODER", "mapbox")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_UnknownGeocoder(t *testing.T) {
	t.Setenv("GEOCODER", "google")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER")
}

func TestLoad_InvalidSnapshotCities(t *testing.T) {
	t.Setenv("SNAPSHOT_CITIES", "São Paulo")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_CITIES")
}

func TestCityRef_String(t *testing.T) {
	assert.Equal(t, "Santos/SP", CityRef{Name: "Santos", UF: "SP"}.String())
}
