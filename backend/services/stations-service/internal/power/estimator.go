// Package power estimates the peak DC charging rate of a station from the data the
// station finder API exposes.
package power

import (
	"strings"
	"time"

	"evolve/backend/services/stations-service/internal/models"
)

// Network is a charging operator the estimator knows about.
type Network int

const (
	NetworkOther Network = iota
	NetworkTesla
	NetworkElectrifyAmerica
	NetworkEVgo
	NetworkChargePoint
	NetworkFrancis
	NetworkBlink
)

// Fallback ratings in kW.
const (
	TeslaV3KW          = 250
	TeslaV2KW          = 150
	ElectrifyAmericaKW = 350
	EVgoKW             = 350
	ChargePointKW      = 62.5
	FrancisKW          = 150
	BlinkKW            = 50
	DefaultDCFastKW    = 50
)

// networkRules is evaluated in order; the first substring hit wins.
var networkRules = []struct {
	needle  string
	network Network
}{
	{"TESLA", NetworkTesla},
	{"ELECTRIFY AMERICA", NetworkElectrifyAmerica},
	{"EVGO", NetworkEVgo},
	{"CHARGEPOINT", NetworkChargePoint},
	{"FRANCIS", NetworkFrancis},
	{"BLINK", NetworkBlink},
}

var (
	teslaV3Since = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	teslaV2Since = time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ClassifyNetwork maps a free-text network name onto a known operator.
func ClassifyNetwork(name string) Network {
	upper := strings.ToUpper(name)
	for _, rule := range networkRules {
		if strings.Contains(upper, rule.needle) {
			return rule.network
		}
	}
	return NetworkOther
}

// String returns a label for logs and metrics.
func (n Network) String() string {
	switch n {
	case NetworkTesla:
		return "tesla"
	case NetworkElectrifyAmerica:
		return "electrify_america"
	case NetworkEVgo:
		return "evgo"
	case NetworkChargePoint:
		return "chargepoint"
	case NetworkFrancis:
		return "francis"
	case NetworkBlink:
		return "blink"
	default:
		return "other"
	}
}

// Estimate returns the maximum charging power in kW. An explicit non-zero provider
// value always wins; otherwise the rating is inferred from the network and open date.
func Estimate(station models.Station) float64 {
	if station.DCFastPowerKW != nil && *station.DCFastPowerKW != 0 {
		return *station.DCFastPowerKW
	}

	switch ClassifyNetwork(station.Network) {
	case NetworkTesla:
		return teslaRating(station.OpenDate)
	case NetworkElectrifyAmerica:
		return ElectrifyAmericaKW
	case NetworkEVgo:
		return EVgoKW
	case NetworkChargePoint:
		return ChargePointKW
	case NetworkFrancis:
		return FrancisKW
	case NetworkBlink:
		return BlinkKW
	case NetworkOther:
		return DefaultDCFastKW
	}
	return DefaultDCFastKW
}

// teslaRating treats sites opened from 2020 on as V3. Missing or unparsable dates get the
// conservative V2 figure.
func teslaRating(openDate string) float64 {
	opened, ok := parseOpenDate(openDate)
	if !ok {
		return TeslaV2KW
	}
	switch {
	case !opened.Before(teslaV3Since):
		return TeslaV3KW
	case !opened.Before(teslaV2Since):
		return TeslaV2KW
	default:
		return TeslaV2KW
	}
}

func parseOpenDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len("2006-01-02") {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
