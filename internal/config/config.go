package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// CityRef names a city and its state (UF) abbreviation.
type CityRef struct {
	Name string
	UF   string
}

func (c CityRef) String() string { return c.Name + "/" + c.UF }

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Forecast (Open-Meteo) configuration.
	OpenMeteoURL      string
	ForecastTimeout   time.Duration
	ForecastCacheSize int
	ForecastCacheTTL  time.Duration
	DefaultTimezone   string

	// Lookup collaborators.
	IBGEURL             string
	IBGETimeout         time.Duration
	BrasilAbertoURL     string
	BrasilAbertoAPIKey  string
	BrasilAbertoTimeout time.Duration
	DistrictLimit       int

	// Geocoding configuration.
	Geocoder           string // "nominatim" or "mapbox"
	NominatimURL       string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	GeocoderRPS        float64
	GeocoderCacheSize  int
	MapboxToken        string
	MapboxTimeout      time.Duration

	NeighborhoodConcurrency int
	CatalogPath             string // empty uses the embedded catalog

	// Snapshot publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
	SnapshotInterval   time.Duration
	SnapshotCities     []CityRef
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenMeteoURL:    sharedcfg.EnvOrDefault("OPEN_METEO_URL", "https://api.open-meteo.com/v1/forecast"),
		DefaultTimezone: sharedcfg.EnvOrDefault("DEFAULT_TIMEZONE", "America/Sao_Paulo"),

		IBGEURL:            sharedcfg.EnvOrDefault("IBGE_URL", "https://servicodados.ibge.gov.br/api/v1/localidades"),
		BrasilAbertoURL:    sharedcfg.EnvOrDefault("BRASIL_ABERTO_URL", "https://api.brasilaberto.com/v1"),
		BrasilAbertoAPIKey: os.Getenv("BRASIL_ABERTO_API_KEY"),

		Geocoder:           strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER", "nominatim")),
		NominatimURL:       sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "AlagAlert/1.0"),
		MapboxToken:        os.Getenv("MAPBOX_TOKEN"),

		CatalogPath: os.Getenv("CATALOG_PATH"),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       parseList(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "flood-risk-snapshots"),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"FORECAST_TIMEOUT", "10s", &cfg.ForecastTimeout},
		{"FORECAST_CACHE_TTL", "600s", &cfg.ForecastCacheTTL},
		{"IBGE_TIMEOUT", "10s", &cfg.IBGETimeout},
		{"BRASIL_ABERTO_TIMEOUT", "15s", &cfg.BrasilAbertoTimeout},
		{"NOMINATIM_TIMEOUT", "10s", &cfg.NominatimTimeout},
		{"MAPBOX_TIMEOUT", "5s", &cfg.MapboxTimeout},
		{"SNAPSHOT_INTERVAL", "10m", &cfg.SnapshotInterval},
	}
	for _, d := range durations {
		v, err := parsePositiveDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"FORECAST_CACHE_SIZE", 500, &cfg.ForecastCacheSize},
		{"GEOCODER_CACHE_SIZE", 1000, &cfg.GeocoderCacheSize},
		{"DISTRICT_LIMIT", 15, &cfg.DistrictLimit},
		{"NEIGHBORHOOD_CONCURRENCY", 4, &cfg.NeighborhoodConcurrency},
	}
	for _, i := range ints {
		v, err := parsePositiveInt(i.key, i.def)
		if err != nil {
			return nil, err
		}
		*i.dest = v
	}

	rps, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GEOCODER_RPS", "0.9"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("invalid GEOCODER_RPS")
	}
	cfg.GeocoderRPS = rps

	cities, err := parseCities(sharedcfg.EnvOrDefault("SNAPSHOT_CITIES", "São Paulo/SP;Campinas/SP;Santos/SP"))
	if err != nil {
		return nil, err
	}
	cfg.SnapshotCities = cities

	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}
	switch cfg.Geocoder {
	case "nominatim":
	case "mapbox":
		if cfg.MapboxToken == "" {
			return nil, errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q", cfg.Geocoder)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// Location returns the configured default timezone. Load has already
// validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseCities reads "Name/UF;Name/UF".
func parseCities(s string) ([]CityRef, error) {
	var out []CityRef
	for _, item := range parseList(s, ";") {
		name, uf, ok := strings.Cut(item, "/")
		name, uf = strings.TrimSpace(name), strings.TrimSpace(uf)
		if !ok || name == "" || len(uf) != 2 {
			return nil, fmt.Errorf("invalid SNAPSHOT_CITIES entry %q", item)
		}
		out = append(out, CityRef{Name: name, UF: strings.ToUpper(uf)})
	}
	return out, nil
}
