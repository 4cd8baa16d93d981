package clients

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"evolve/backend/services/stations-service/internal/metrics"
	"evolve/backend/services/stations-service/internal/models"
	"evolve/backend/services/stations-service/internal/power"
)

// DefaultNRELBaseURL is the nearest-station endpoint of the NREL alternative fuel API.
const DefaultNRELBaseURL = "https://developer.nrel.gov/api/alt-fuel-stations/v1/nearest.json"

// Fixed query shape for DC fast charger lookups.
const (
	nrelFuelType       = "ELEC"
	nrelConnectorTypes = "CHADEMO,J1772COMBO,TESLA"
	nrelChargingLevel  = "dc_fast"
	nrelStatus         = "E"
	nrelAccess         = "public"
	nrelLimit          = 50
	nrelRadiusMiles    = 25
)

// Geocoder resolves free text to coordinates; ok is false on any failure.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (models.Coordinates, bool)
}

type nrelResponse struct {
	FuelStations []models.Station `json:"fuel_stations"`
}

// NRELClient finds public DC fast chargers around a location.
type NRELClient struct {
	apiKey   string
	base     *BaseClient
	geocoder Geocoder
	logger   *zap.Logger
}

// NewNRELClient returns a client. An empty apiKey disables lookups entirely.
func NewNRELClient(apiKey, baseURL string, httpClient HTTPDoer, geocoder Geocoder, logger *zap.Logger) *NRELClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultNRELBaseURL
	}
	return &NRELClient{
		apiKey:   strings.TrimSpace(apiKey),
		base:     NewBaseClient(baseURL, httpClient, nil),
		geocoder: geocoder,
		logger:   logger,
	}
}

// FindStations never returns an error: configuration gaps and upstream failures are logged
// and reported as an empty, Unavailable result.
func (c *NRELClient) FindStations(ctx context.Context, location string) models.SearchResult {
	if c.apiKey == "" {
		c.logger.Error("NREL api key not configured")
		metrics.ObserveUpstream(metrics.UpstreamNREL, metrics.ResultUnavailable, 0)
		return models.SearchResult{Unavailable: true}
	}

	coords, ok := c.geocoder.Geocode(ctx, location)
	if !ok {
		c.logger.Error("failed to geocode location", zap.String("location", location))
		return models.SearchResult{Unavailable: true}
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("fuel_type", nrelFuelType)
	params.Set("ev_connector_type", nrelConnectorTypes)
	params.Set("ev_charging_level", nrelChargingLevel)
	params.Set("limit", strconv.Itoa(nrelLimit))
	params.Set("status", nrelStatus)
	params.Set("access", nrelAccess)
	params.Set("radius", strconv.Itoa(nrelRadiusMiles))

	c.logger.Info("requesting NREL stations",
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude),
	)

	started := time.Now()
	var payload nrelResponse
	status, err := c.base.GetJSON(ctx, "", params, &payload)
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, context.DeadlineExceeded) {
			result = metrics.ResultTimeout
		}
		metrics.ObserveUpstream(metrics.UpstreamNREL, result, time.Since(started))
		c.logger.Error("NREL api request failed", zap.Int("status", status), zap.Error(err))
		return models.SearchResult{Unavailable: true}
	}
	metrics.ObserveUpstream(metrics.UpstreamNREL, metrics.ResultSuccess, time.Since(started))

	stations := make([]models.Station, 0, len(payload.FuelStations))
	for _, station := range payload.FuelStations {
		if station.DCFastCount <= 0 {
			continue
		}
		station.MaxPowerKW = power.Estimate(station)
		c.logger.Debug("station accepted",
			zap.String("station_id", station.ID.String()),
			zap.String("name", station.Name),
			zap.String("network", station.Network),
			zap.String("network_class", power.ClassifyNetwork(station.Network).String()),
			zap.Float64("power_kw", station.MaxPowerKW),
			zap.String("open_date", station.OpenDate),
		)
		stations = append(stations, station)
	}

	c.logger.Info("retrieved DC fast charging stations", zap.Int("count", len(stations)))
	return models.SearchResult{Stations: stations}
}
