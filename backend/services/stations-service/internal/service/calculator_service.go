package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"evolve/backend/services/stations-service/internal/models"
	"evolve/backend/services/stations-service/internal/repository"
)

// Charging rates used to size a home charger, in kW.
var (
	Level1RateKW = decimal.NewFromFloat(1.4)
	Level2RateKW = decimal.NewFromFloat(7.2)
)

// Home charger recommendations.
const (
	RecommendStandardOutlet = "Standard outlet (110V) is sufficient for your needs."
	RecommendLevel2         = "Level 2 charger (240V) recommended for your daily driving habits."
)

var (
	minMPG             = decimal.RequireFromString("0.1")
	minGasPrice        = decimal.RequireFromString("0.01")
	minElectricityCost = decimal.RequireFromString("0.01")
	monthsPerYear      = decimal.NewFromInt(12)
	savingsYears       = decimal.NewFromInt(5)
	whPerKWh           = decimal.NewFromInt(1000)
)

// VehicleCatalog reads EV catalogue entries.
type VehicleCatalog interface {
	Years(ctx context.Context) ([]int, error)
	Manufacturers(ctx context.Context, year int) ([]string, error)
	Models(ctx context.Context, year int, manufacturer string) ([]string, error)
	Find(ctx context.Context, year int, manufacturer, model string) (*models.Vehicle, error)
}

// Level2Recorder stores calculator runs.
type Level2Recorder interface {
	Create(ctx context.Context, s *models.Level2Submission) (*models.Level2Submission, error)
}

// VehicleSelection identifies a catalogue entry by the three dependent form fields.
type VehicleSelection struct {
	ModelYear    string
	Manufacturer string
	Model        string
}

// FuelSavingsInput is the raw gas vs electric comparison form.
type FuelSavingsInput struct {
	VehicleSelection
	MPG             string
	GasPrice        string
	AnnualMiles     string
	ElectricityCost string
}

// FuelSavingsResult holds annual running costs rounded to cents.
type FuelSavingsResult struct {
	Vehicle               models.Vehicle  `json:"selected_ev"`
	AnnualGasCost         decimal.Decimal `json:"annual_gas_cost"`
	AnnualElectricityCost decimal.Decimal `json:"annual_electricity_cost"`
	AnnualSavings         decimal.Decimal `json:"annual_savings"`
	MonthlySavings        decimal.Decimal `json:"monthly_savings"`
	FiveYearSavings       decimal.Decimal `json:"five_year_savings"`
}

// Level2Input is the raw home charger sizing form.
type Level2Input struct {
	VehicleSelection
	DailyMiles    string
	ChargingHours string
	HomeVoltage   string
	UserID        *int64
}

// Level2Result reports daily charge time at both outlet types.
type Level2Result struct {
	Vehicle        models.Vehicle  `json:"selected_ev"`
	DailyKWh       decimal.Decimal `json:"daily_kwh_needed"`
	ChargeHours110 decimal.Decimal `json:"charge_hours_110"`
	ChargeHours240 decimal.Decimal `json:"charge_hours_240"`
	Recommendation string          `json:"recommendation"`
}

// CalculatorService implements the vehicle catalogue and cost calculators.
type CalculatorService struct {
	vehicles VehicleCatalog
	recorder Level2Recorder
	logger   *zap.Logger
}

// NewCalculatorService builds service. recorder may be nil.
func NewCalculatorService(vehicles VehicleCatalog, recorder Level2Recorder, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{vehicles: vehicles, recorder: recorder, logger: logger}
}

// Years lists catalogue model years, newest first.
func (s *CalculatorService) Years(ctx context.Context) ([]int, error) {
	return s.vehicles.Years(ctx)
}

// Manufacturers lists makes for a year. A non-numeric year yields an empty list.
func (s *CalculatorService) Manufacturers(ctx context.Context, rawYear string) ([]string, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rawYear))
	if err != nil {
		return []string{}, nil
	}
	return s.vehicles.Manufacturers(ctx, year)
}

// Models lists models for a year and make.
func (s *CalculatorService) Models(ctx context.Context, rawYear, manufacturer string) ([]string, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rawYear))
	manufacturer = strings.TrimSpace(manufacturer)
	if err != nil || manufacturer == "" {
		return []string{}, nil
	}
	return s.vehicles.Models(ctx, year, manufacturer)
}

// FuelSavings compares a year of gas and electric running costs.
func (s *CalculatorService) FuelSavings(ctx context.Context, in FuelSavingsInput) (*FuelSavingsResult, error) {
	verr := &ValidationError{}
	mpg := parseDecimalMin(verr, "mpg", in.MPG, minMPG)
	gasPrice := parseDecimalMin(verr, "gas_price", in.GasPrice, minGasPrice)
	electricityCost := parseDecimalMin(verr, "electricity_cost", in.ElectricityCost, minElectricityCost)
	annualMiles := parseIntRange(verr, "annual_miles", in.AnnualMiles, 1, -1)
	year := validateSelection(verr, in.VehicleSelection)
	if !verr.empty() {
		return nil, verr
	}

	vehicle, err := s.findVehicle(ctx, year, in.VehicleSelection)
	if err != nil {
		return nil, err
	}

	miles := decimal.NewFromInt(int64(annualMiles))
	gallons := miles.Div(mpg)
	gasCost := gallons.Mul(gasPrice)
	kwh := miles.Mul(decimal.NewFromFloat(vehicle.EfficiencyWhPerMile())).Div(whPerKWh)
	electricCost := kwh.Mul(electricityCost)
	savings := gasCost.Sub(electricCost)

	return &FuelSavingsResult{
		Vehicle:               *vehicle,
		AnnualGasCost:         gasCost.Round(2),
		AnnualElectricityCost: electricCost.Round(2),
		AnnualSavings:         savings.Round(2),
		MonthlySavings:        savings.Div(monthsPerYear).Round(2),
		FiveYearSavings:       savings.Mul(savingsYears).Round(2),
	}, nil
}

// Level2 sizes a home charger for a daily driving distance and records the run.
func (s *CalculatorService) Level2(ctx context.Context, in Level2Input) (*Level2Result, error) {
	verr := &ValidationError{}
	dailyMiles := parseIntRange(verr, "daily_miles", in.DailyMiles, 0, -1)
	chargingHours := parseIntRange(verr, "charging_hours", in.ChargingHours, 1, 24)
	voltage := strings.TrimSpace(in.HomeVoltage)
	switch voltage {
	case "110", "240":
	case "":
		verr.add("home_voltage", "This field is required.")
	default:
		verr.add("home_voltage", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", in.HomeVoltage))
	}
	year := validateSelection(verr, in.VehicleSelection)
	if !verr.empty() {
		return nil, verr
	}

	vehicle, err := s.findVehicle(ctx, year, in.VehicleSelection)
	if err != nil {
		return nil, err
	}
	if vehicle.RangeMiles <= 0 {
		return nil, &ValidationError{Fields: map[string]string{"model": "The selected vehicle has no rated range."}}
	}

	dailyKWh := decimal.NewFromInt(int64(dailyMiles)).
		Mul(decimal.NewFromFloat(vehicle.BatteryCapacityKWh)).
		Div(decimal.NewFromInt(int64(vehicle.RangeMiles)))
	hours110 := dailyKWh.Div(Level1RateKW).Round(2)
	hours240 := dailyKWh.Div(Level2RateKW).Round(2)

	recommendation := RecommendLevel2
	if hours110.LessThanOrEqual(decimal.NewFromInt(int64(chargingHours))) {
		recommendation = RecommendStandardOutlet
	}

	result := &Level2Result{
		Vehicle:        *vehicle,
		DailyKWh:       dailyKWh.Round(2),
		ChargeHours110: hours110,
		ChargeHours240: hours240,
		Recommendation: recommendation,
	}

	if s.recorder != nil {
		_, err := s.recorder.Create(ctx, &models.Level2Submission{
			UserID:             in.UserID,
			EVModel:            vehicle.DisplayName(),
			BatteryCapacityKWh: vehicle.BatteryCapacityKWh,
			DailyMiles:         dailyMiles,
			ChargingHours:      chargingHours,
			HomeVoltage:        voltage,
			Recommendation:     recommendation,
		})
		if err != nil {
			s.logger.Warn("failed to record level 2 submission", zap.Error(err))
		}
	}
	return result, nil
}

func (s *CalculatorService) findVehicle(ctx context.Context, year int, sel VehicleSelection) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.Find(ctx, year, strings.TrimSpace(sel.Manufacturer), strings.TrimSpace(sel.Model))
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return vehicle, nil
}

func validateSelection(verr *ValidationError, sel VehicleSelection) int {
	year := parseIntRange(verr, "model_year", sel.ModelYear, 0, -1)
	if strings.TrimSpace(sel.Manufacturer) == "" {
		verr.add("manufacturer", "This field is required.")
	}
	if strings.TrimSpace(sel.Model) == "" {
		verr.add("model", "This field is required.")
	}
	return year
}

func parseDecimalMin(verr *ValidationError, field, raw string, min decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.add(field, "This field is required.")
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		verr.add(field, "Enter a number.")
		return decimal.Zero
	}
	if value.LessThan(min) {
		verr.add(field, fmt.Sprintf("Ensure this value is greater than or equal to %s.", min.String()))
	}
	return value
}

// parseIntRange validates an integer field; max < 0 disables the upper bound.
func parseIntRange(verr *ValidationError, field, raw string, min, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.add(field, "This field is required.")
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		verr.add(field, "Enter a whole number.")
		return 0
	}
	if value < min {
		verr.add(field, fmt.Sprintf("Ensure this value is greater than or equal to %d.", min))
	}
	if max >= 0 && value > max {
		verr.add(field, fmt.Sprintf("Ensure this value is less than or equal to %d.", max))
	}
	return value
}
