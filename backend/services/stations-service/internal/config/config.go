package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evolve/backend/libs/config"
)

// Config defines stations service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"STATIONS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN          string `yaml:"dsn" env:"STATIONS_POSTGRES_DSN"`
		MaxOpenConns int    `yaml:"maxOpenConns" env:"STATIONS_POSTGRES_MAX_OPEN_CONNS"`
		Migrate      bool   `yaml:"migrate" env:"STATIONS_MIGRATE"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr" env:"STATIONS_REDIS_ADDR"`
		Password string        `yaml:"password" env:"STATIONS_REDIS_PASSWORD"`
		DB       int           `yaml:"db" env:"STATIONS_REDIS_DB"`
		TTL      time.Duration `yaml:"searchCacheTTL" env:"STATIONS_SEARCH_CACHE_TTL"`
	} `yaml:"redis"`
	JWT struct {
		Secret string `yaml:"secret" env:"STATIONS_JWT_SECRET"`
	} `yaml:"jwt"`
	NREL struct {
		APIKey  string        `yaml:"apiKey" env:"NREL_API_KEY"`
		BaseURL string        `yaml:"baseURL" env:"NREL_BASE_URL"`
		Timeout time.Duration `yaml:"timeout" env:"NREL_TIMEOUT"`
	} `yaml:"nrel"`
	Geocoder struct {
		BaseURL   string        `yaml:"baseURL" env:"GEOCODER_BASE_URL"`
		UserAgent string        `yaml:"userAgent" env:"GEOCODER_USER_AGENT"`
		Timeout   time.Duration `yaml:"timeout" env:"GEOCODER_TIMEOUT"`
	} `yaml:"geocoder"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8083"
	cfg.Database.Migrate = true
	cfg.Redis.TTL = 15 * time.Minute
	cfg.NREL.BaseURL = "https://developer.nrel.gov/api/alt-fuel-stations/v1/nearest.json"
	cfg.NREL.Timeout = 5 * time.Second
	cfg.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	cfg.Geocoder.UserAgent = "evolve_ev_app"
	cfg.Geocoder.Timeout = 5 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.NREL.Timeout <= 0 {
		cfg.NREL.Timeout = 5 * time.Second
	}
	if cfg.Geocoder.Timeout <= 0 {
		cfg.Geocoder.Timeout = 5 * time.Second
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8083"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheEnabled reports whether a redis address is configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
