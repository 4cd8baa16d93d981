package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evolve/backend/libs/config"
)

// Config defines gateway configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"API_GATEWAY_HTTP_PORT"`
	} `yaml:"http"`
	Services struct {
		AuthURL     string `yaml:"authUrl" env:"AUTH_SERVICE_URL"`
		StationsURL string `yaml:"stationsUrl" env:"STATIONS_SERVICE_URL"`
	} `yaml:"services"`
	HTTPClient struct {
		Timeout time.Duration `yaml:"timeout" env:"API_GATEWAY_HTTP_TIMEOUT"`
	} `yaml:"httpClient"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8000"
	cfg.Services.AuthURL = "http://localhost:8080"
	cfg.Services.StationsURL = "http://localhost:8083"
	cfg.HTTPClient.Timeout = 15 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Services.AuthURL) == "" {
		return nil, errors.New("config: auth service url required")
	}
	if strings.TrimSpace(cfg.Services.StationsURL) == "" {
		return nil, errors.New("config: stations service url required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// HTTPTimeout returns http client timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPClient.Timeout <= 0 {
		return 15 * time.Second
	}
	return c.HTTPClient.Timeout
}
