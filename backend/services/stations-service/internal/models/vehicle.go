package models

import (
	"fmt"
	"time"
)

// Vehicle is a catalogue entry from the vehicles table.
type Vehicle struct {
	ID                 int64   `db:"id" json:"id"`
	Manufacturer       string  `db:"manufacturer" json:"manufacturer"`
	Model              string  `db:"model" json:"model"`
	ModelYear          int     `db:"model_year" json:"model_year"`
	BatteryCapacityKWh float64 `db:"battery_capacity_kwh" json:"battery_capacity_kwh"`
	RangeMiles         int     `db:"electric_range_miles" json:"epa_range_miles"`
}

// DisplayName renders "<year> <make> <model>".
func (v Vehicle) DisplayName() string {
	return fmt.Sprintf("%d %s %s", v.ModelYear, v.Manufacturer, v.Model)
}

// EfficiencyWhPerMile derives consumption from battery size and rated range.
func (v Vehicle) EfficiencyWhPerMile() float64 {
	if v.RangeMiles <= 0 {
		return 0
	}
	return v.BatteryCapacityKWh * 1000 / float64(v.RangeMiles)
}

// Level2Submission records one run of the home charger calculator.
type Level2Submission struct {
	ID                 int64     `db:"id" json:"id"`
	UserID             *int64    `db:"user_id" json:"user_id,omitempty"`
	EVModel            string    `db:"ev_model" json:"ev_model"`
	BatteryCapacityKWh float64   `db:"battery_capacity_kwh" json:"battery_capacity_kwh"`
	DailyMiles         int       `db:"daily_miles" json:"daily_miles"`
	ChargingHours      int       `db:"charging_hours" json:"charging_hours"`
	HomeVoltage        string    `db:"home_voltage" json:"home_voltage"`
	Recommendation     string    `db:"recommendation" json:"recommendation"`
	SubmittedAt        time.Time `db:"submitted_at" json:"submitted_at"`
}
