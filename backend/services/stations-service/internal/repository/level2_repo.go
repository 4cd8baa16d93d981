package repository

import (
	"context"
	"database/sql"

	"evolve/backend/services/stations-service/internal/models"
)

// Level2Repository records home charger calculator runs.
type Level2Repository struct {
	db *sql.DB
}

// NewLevel2Repository returns repository.
func NewLevel2Repository(db *sql.DB) *Level2Repository {
	return &Level2Repository{db: db}
}

// Create stores a submission.
func (r *Level2Repository) Create(ctx context.Context, s *models.Level2Submission) (*models.Level2Submission, error) {
	const query = `
		INSERT INTO level2_calculator_submissions
			(user_id, ev_model, battery_capacity_kwh, daily_miles, charging_hours, home_voltage, recommendation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, submitted_at
	`
	var userID sql.NullInt64
	if s.UserID != nil {
		userID = sql.NullInt64{Int64: *s.UserID, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		userID,
		s.EVModel,
		s.BatteryCapacityKWh,
		s.DailyMiles,
		s.ChargingHours,
		s.HomeVoltage,
		s.Recommendation,
	).Scan(&s.ID, &s.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
