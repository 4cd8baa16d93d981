package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	libdb "evolve/backend/libs/db"
	"evolve/backend/migrations"
	"evolve/backend/services/stations-service/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx := context.Background()
	db, err := libdb.NewPostgresDB(ctx, dsn, libdb.PoolOptions{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := libdb.Migrate(ctx, db, migrations.FS, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func uniqueStationID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestStationStatusAppendOnly(t *testing.T) {
	db := openTestDB(t)
	repo := NewStationStatusRepository(db)
	ctx := context.Background()
	stationID := uniqueStationID("it-append")

	const submissions = 3
	for i := 0; i < submissions; i++ {
		created, err := repo.Create(ctx, &models.StationStatus{StationID: stationID, Status: models.StatusBusy})
		if err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		if created.ID == 0 || created.UpdatedAt.IsZero() {
			t.Fatalf("expected id and timestamp from database, got %+v", created)
		}
	}

	rows, err := repo.ListByStation(ctx, stationID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != submissions {
		t.Fatalf("expected %d rows, got %d", submissions, len(rows))
	}
}

func TestLatestByStationIDsPicksNewest(t *testing.T) {
	db := openTestDB(t)
	repo := NewStationStatusRepository(db)
	ctx := context.Background()

	first := uniqueStationID("it-latest-a")
	second := uniqueStationID("it-latest-b")
	silent := uniqueStationID("it-latest-none")
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	insert := func(stationID string, status models.Status, at time.Time) {
		t.Helper()
		_, err := db.ExecContext(ctx,
			`INSERT INTO station_statuses (nrel_station_id, status, updated_at) VALUES ($1, $2, $3)`,
			stationID, string(status), at)
		if err != nil {
			t.Fatalf("seed status: %v", err)
		}
	}

	insert(first, models.StatusWorking, base)
	insert(first, models.StatusBroken, base.Add(2*time.Hour))
	insert(first, models.StatusBusy, base.Add(time.Hour))

	insert(second, models.StatusWorking, base)
	insert(second, models.StatusBusy, base)

	latest, err := repo.LatestByStationIDs(ctx, []string{first, second, silent})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest[first] != models.StatusBroken {
		t.Fatalf("expected newest status Broken for %s, got %q", first, latest[first])
	}
	if latest[second] != models.StatusBusy {
		t.Fatalf("expected tie broken by highest id (Busy), got %q", latest[second])
	}
	if _, ok := latest[silent]; ok {
		t.Fatalf("expected no entry for station without reports")
	}
}

func TestVehicleCatalogue(t *testing.T) {
	db := openTestDB(t)
	repo := NewVehicleRepository(db)
	ctx := context.Background()

	manufacturer := uniqueStationID("Make")
	year := 2031
	for _, model := range []string{"Model B", "Model A"} {
		if _, err := repo.Create(ctx, &models.Vehicle{
			Manufacturer:       manufacturer,
			Model:              model,
			ModelYear:          year,
			BatteryCapacityKWh: 75,
			RangeMiles:         300,
		}); err != nil {
			t.Fatalf("create vehicle: %v", err)
		}
	}

	makes, err := repo.Manufacturers(ctx, year)
	if err != nil {
		t.Fatalf("manufacturers: %v", err)
	}
	found := false
	for _, m := range makes {
		if m == manufacturer {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s among manufacturers %v", manufacturer, makes)
	}

	names, err := repo.Models(ctx, year, manufacturer)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(names) != 2 || names[0] != "Model A" || names[1] != "Model B" {
		t.Fatalf("unexpected models %v", names)
	}

	v, err := repo.Find(ctx, year, manufacturer, "Model A")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if v.BatteryCapacityKWh != 75 || v.RangeMiles != 300 {
		t.Fatalf("unexpected vehicle %+v", v)
	}

	if _, err := repo.Find(ctx, year, manufacturer, "Missing"); err != ErrVehicleNotFound {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestLevel2SubmissionCreate(t *testing.T) {
	db := openTestDB(t)
	repo := NewLevel2Repository(db)

	saved, err := repo.Create(context.Background(), &models.Level2Submission{
		EVModel:            "2024 Tesla Model 3",
		BatteryCapacityKWh: 57.5,
		DailyMiles:         40,
		ChargingHours:      8,
		HomeVoltage:        "240",
		Recommendation:     "Standard outlet (110V) is sufficient for your needs.",
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	if saved.ID == 0 || saved.SubmittedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", saved)
	}
}
