package repository

import (
	"context"
	"database/sql"
	"errors"

	"evolve/backend/services/stations-service/internal/models"
)

// ErrVehicleNotFound indicates no catalogue entry matched.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleRepository reads the EV catalogue.
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository returns repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Years lists distinct model years, newest first.
func (r *VehicleRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT model_year FROM vehicles ORDER BY model_year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

// Manufacturers lists distinct makes for a model year.
func (r *VehicleRepository) Manufacturers(ctx context.Context, year int) ([]string, error) {
	const query = `
		SELECT DISTINCT manufacturer
		FROM vehicles
		WHERE model_year = $1
		ORDER BY manufacturer
	`
	return r.strings(ctx, query, year)
}

// Models lists distinct models for a year and make.
func (r *VehicleRepository) Models(ctx context.Context, year int, manufacturer string) ([]string, error) {
	const query = `
		SELECT DISTINCT model
		FROM vehicles
		WHERE model_year = $1 AND manufacturer = $2
		ORDER BY model
	`
	return r.strings(ctx, query, year, manufacturer)
}

// Find returns the first catalogue entry for year, make and model.
func (r *VehicleRepository) Find(ctx context.Context, year int, manufacturer, model string) (*models.Vehicle, error) {
	const query = `
		SELECT id, manufacturer, model, model_year, battery_capacity_kwh, electric_range_miles
		FROM vehicles
		WHERE model_year = $1 AND manufacturer = $2 AND model = $3
		ORDER BY id
		LIMIT 1
	`
	var v models.Vehicle
	err := r.db.QueryRowContext(ctx, query, year, manufacturer, model).Scan(
		&v.ID,
		&v.Manufacturer,
		&v.Model,
		&v.ModelYear,
		&v.BatteryCapacityKWh,
		&v.RangeMiles,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a catalogue entry. Used by seeding and tests.
func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	const query = `
		INSERT INTO vehicles (manufacturer, model, model_year, battery_capacity_kwh, electric_range_miles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query,
		v.Manufacturer,
		v.Model,
		v.ModelYear,
		v.BatteryCapacityKWh,
		v.RangeMiles,
	).Scan(&v.ID); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VehicleRepository) strings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
