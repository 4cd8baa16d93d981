// Package geocoder resolves free-text US locations to coordinates using the
// OpenStreetMap Nominatim search API.
package geocoder

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"evolve/backend/services/stations-service/internal/clients"
	"evolve/backend/services/stations-service/internal/metrics"
	"evolve/backend/services/stations-service/internal/models"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "evolve_ev_app"

	searchPath    = "/search"
	countrySuffix = ", USA"
)

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim implements clients.Geocoder.
type Nominatim struct {
	base   *clients.BaseClient
	logger *zap.Logger
}

var _ clients.Geocoder = (*Nominatim)(nil)

// NewNominatim builds a geocoder. Empty baseURL and userAgent fall back to defaults.
func NewNominatim(baseURL, userAgent string, httpClient clients.HTTPDoer, logger *zap.Logger) *Nominatim {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Nominatim{
		base:   clients.NewBaseClient(baseURL, httpClient, map[string]string{"User-Agent": userAgent}),
		logger: logger,
	}
}

// Geocode returns the first match for text within the USA. ok is false on any failure.
func (g *Nominatim) Geocode(ctx context.Context, text string) (models.Coordinates, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Coordinates{}, false
	}

	query := url.Values{}
	query.Set("q", text+countrySuffix)
	query.Set("format", "json")
	query.Set("limit", "1")

	started := time.Now()
	var places []place
	status, err := g.base.GetJSON(ctx, searchPath, query, &places)
	if err != nil {
		metrics.ObserveUpstream(metrics.UpstreamGeocoder, metrics.ResultError, time.Since(started))
		g.logger.Warn("geocoding request failed",
			zap.String("location", text),
			zap.Int("status", status),
			zap.Error(err),
		)
		return models.Coordinates{}, false
	}
	if len(places) == 0 {
		metrics.ObserveUpstream(metrics.UpstreamGeocoder, metrics.ResultEmpty, time.Since(started))
		g.logger.Warn("no geocoding results", zap.String("location", text))
		return models.Coordinates{}, false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(places[0].Lat), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(places[0].Lon), 64)
	if errLat != nil || errLon != nil {
		metrics.ObserveUpstream(metrics.UpstreamGeocoder, metrics.ResultError, time.Since(started))
		g.logger.Warn("unparsable geocoding coordinates",
			zap.String("location", text),
			zap.String("lat", places[0].Lat),
			zap.String("lon", places[0].Lon),
		)
		return models.Coordinates{}, false
	}

	metrics.ObserveUpstream(metrics.UpstreamGeocoder, metrics.ResultSuccess, time.Since(started))
	g.logger.Debug("geocoded location",
		zap.String("location", text),
		zap.String("match", places[0].DisplayName),
		zap.Float64("latitude", lat),
		zap.Float64("longitude", lon),
	)
	return models.Coordinates{Latitude: lat, Longitude: lon}, true
}
