package service

import (
	"context"
	"fmt"

	"evolve/backend/services/stations-service/internal/models"
)

// StatusLookup resolves the newest local status for a batch of station ids.
type StatusLookup interface {
	LatestByStationIDs(ctx context.Context, stationIDs []string) (map[string]models.Status, error)
}

// AttachLocalStatus pairs each station with its most recent crowd-sourced status using a
// single batched lookup. Input order is preserved. When the lookup fails the stations are
// still returned, without statuses, alongside the error.
func AttachLocalStatus(ctx context.Context, stations []models.Station, lookup StatusLookup) ([]models.AugmentedStation, error) {
	augmented := make([]models.AugmentedStation, len(stations))
	if len(stations) == 0 {
		return augmented, nil
	}

	seen := make(map[string]struct{}, len(stations))
	ids := make([]string, 0, len(stations))
	for i, station := range stations {
		augmented[i].Station = station
		id := station.ID.String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	latest, err := lookup.LatestByStationIDs(ctx, ids)
	if err != nil {
		return augmented, fmt.Errorf("load local statuses: %w", err)
	}

	for i := range augmented {
		if status, ok := latest[augmented[i].ID.String()]; ok {
			s := status
			augmented[i].LocalStatus = &s
		}
	}
	return augmented, nil
}
