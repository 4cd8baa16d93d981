package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StationID is the provider's opaque station identifier. NREL sends numbers, but strings
// are accepted so the value can round-trip through caches and form posts.
type StationID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *StationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StationID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("station id: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = StationID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = StationID(n.String())
	return nil
}

// String returns the identifier used as the local status key.
func (id StationID) String() string {
	return string(id)
}

// Station is one DC fast charging location as returned by the station finder API.
type Station struct {
	ID             StationID `json:"id"`
	Name           string    `json:"station_name"`
	StreetAddress  string    `json:"street_address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Zip            string    `json:"zip"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	ConnectorTypes []string  `json:"ev_connector_types"`
	Network        string    `json:"ev_network"`
	DCFastCount    int       `json:"ev_dc_fast_num"`
	OpenDate       string    `json:"open_date"`
	DCFastPowerKW  *float64  `json:"ev_dc_fast_charger_power,omitempty"`
	Distance       float64   `json:"distance"`
	MaxPowerKW     float64   `json:"max_power_kw"`
}

// AugmentedStation is a station with the most recent crowd-sourced status attached.
type AugmentedStation struct {
	Station
	LocalStatus *Status `json:"local_status"`
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchResult is the outcome of one station lookup. Unavailable is set when the
// upstream chain failed (or is not configured) as opposed to legitimately matching nothing.
type SearchResult struct {
	Stations    []Station
	Unavailable bool
}
