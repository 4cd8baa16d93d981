package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"evolve/backend/services/stations-service/internal/models"
)

// ErrEmptyStationID is returned when a status is written without a station reference.
var ErrEmptyStationID = errors.New("station id is required")

// StationStatusRepository persists crowd-sourced station reports.
type StationStatusRepository struct {
	db *sql.DB
}

// NewStationStatusRepository returns repository.
func NewStationStatusRepository(db *sql.DB) *StationStatusRepository {
	return &StationStatusRepository{db: db}
}

// Create appends a report. Existing rows for the station are never touched.
func (r *StationStatusRepository) Create(ctx context.Context, status *models.StationStatus) (*models.StationStatus, error) {
	if status.StationID == "" {
		return nil, ErrEmptyStationID
	}
	const query = `
		INSERT INTO station_statuses (nrel_station_id, status, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, updated_at
	`
	var userID sql.NullInt64
	if status.UserID != nil {
		userID = sql.NullInt64{Int64: *status.UserID, Valid: true}
	}
	if err := r.db.QueryRowContext(ctx, query, status.StationID, string(status.Status), userID).
		Scan(&status.ID, &status.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert station status: %w", err)
	}
	return status, nil
}

// LatestByStationIDs returns the most recent status per station for the given ids.
// Stations without any report are absent from the map. When several rows share the
// newest timestamp the one with the highest id wins.
func (r *StationStatusRepository) LatestByStationIDs(ctx context.Context, stationIDs []string) (map[string]models.Status, error) {
	latest := make(map[string]models.Status, len(stationIDs))
	if len(stationIDs) == 0 {
		return latest, nil
	}
	const query = `
		SELECT s.nrel_station_id, s.status
		FROM station_statuses s
		JOIN (
			SELECT nrel_station_id, MAX(updated_at) AS latest
			FROM station_statuses
			WHERE nrel_station_id = ANY($1)
			GROUP BY nrel_station_id
		) m ON m.nrel_station_id = s.nrel_station_id AND m.latest = s.updated_at
		ORDER BY s.nrel_station_id, s.id
	`
	rows, err := r.db.QueryContext(ctx, query, stationIDs)
	if err != nil {
		return nil, fmt.Errorf("query latest statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stationID string
			status    string
		)
		if err := rows.Scan(&stationID, &status); err != nil {
			return nil, err
		}
		latest[stationID] = models.Status(status)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return latest, nil
}

// ListByStation returns every report for a station, newest first.
func (r *StationStatusRepository) ListByStation(ctx context.Context, stationID string, limit int) ([]models.StationStatus, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, nrel_station_id, status, user_id, updated_at
		FROM station_statuses
		WHERE nrel_station_id = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, stationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []models.StationStatus
	for rows.Next() {
		var (
			s      models.StationStatus
			status string
			userID sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.StationID, &status, &userID, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Status = models.Status(status)
		if userID.Valid {
			id := userID.Int64
			s.UserID = &id
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}
