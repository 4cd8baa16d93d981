package models

import (
	"fmt"
	"time"
)

// Status is a user-reported station condition.
type Status string

const (
	StatusWorking Status = "Working"
	StatusBroken  Status = "Broken"
	StatusBusy    Status = "Busy"
)

// Statuses lists the accepted values in display order.
var Statuses = []Status{StatusWorking, StatusBroken, StatusBusy}

// ParseStatus validates a raw status value. Matching is exact.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("status %q is not one of %v", raw, Statuses)
}

// StationStatus is one stored report. Rows are append-only.
type StationStatus struct {
	ID        int64     `db:"id" json:"id"`
	StationID string    `db:"nrel_station_id" json:"station_id"`
	Status    Status    `db:"status" json:"status"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
