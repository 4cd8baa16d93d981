package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"evolve/backend/services/stations-service/internal/models"
)

func TestAttachLocalStatusUsesNewestReport(t *testing.T) {
	store := &fakeStatusStore{}
	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	store.add("12345", models.StatusWorking, base)
	store.add("12345", models.StatusBroken, base.Add(time.Hour))
	store.add("12345", models.StatusBusy, base.Add(30*time.Minute))
	store.add("99999", models.StatusBroken, base)

	stations := []models.Station{
		{ID: "12345", Name: "Test Supercharger"},
		{ID: "67890", Name: "Test EA Station"},
		{ID: "12345", Name: "Duplicate listing"},
	}

	augmented, err := AttachLocalStatus(context.Background(), stations, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(augmented) != 3 {
		t.Fatalf("expected 3 stations, got %d", len(augmented))
	}
	if augmented[0].LocalStatus == nil || *augmented[0].LocalStatus != models.StatusBroken {
		t.Fatalf("expected newest status Broken, got %v", augmented[0].LocalStatus)
	}
	if augmented[1].LocalStatus != nil {
		t.Fatalf("expected no status for unreported station, got %v", *augmented[1].LocalStatus)
	}
	if augmented[2].Name != "Duplicate listing" || augmented[2].LocalStatus == nil {
		t.Fatalf("expected order preserved and duplicate annotated, got %+v", augmented[2])
	}

	if store.lookups != 1 {
		t.Fatalf("expected one batched lookup, got %d", store.lookups)
	}
	if ids := store.lookupArgs[0]; len(ids) != 2 || ids[0] != "12345" || ids[1] != "67890" {
		t.Fatalf("expected distinct ids in input order, got %v", ids)
	}
}

func TestAttachLocalStatusTieGoesToHighestID(t *testing.T) {
	store := &fakeStatusStore{}
	at := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	store.add("1", models.StatusWorking, at)
	store.add("1", models.StatusBusy, at)

	augmented, err := AttachLocalStatus(context.Background(), []models.Station{{ID: "1"}}, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if augmented[0].LocalStatus == nil || *augmented[0].LocalStatus != models.StatusBusy {
		t.Fatalf("expected Busy, got %v", augmented[0].LocalStatus)
	}
}

func TestAttachLocalStatusEmptyInput(t *testing.T) {
	store := &fakeStatusStore{}
	augmented, err := AttachLocalStatus(context.Background(), nil, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(augmented) != 0 {
		t.Fatalf("expected empty output")
	}
	if store.lookups != 0 {
		t.Fatalf("expected no lookup for empty input")
	}
}

func TestAttachLocalStatusLookupFailureKeepsStations(t *testing.T) {
	store := &fakeStatusStore{lookupErr: errStoreDown}
	augmented, err := AttachLocalStatus(context.Background(), []models.Station{{ID: "1"}, {ID: "2"}}, store)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(augmented) != 2 || augmented[0].LocalStatus != nil || augmented[1].LocalStatus != nil {
		t.Fatalf("expected stations without statuses, got %+v", augmented)
	}
}
