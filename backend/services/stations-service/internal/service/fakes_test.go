package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"evolve/backend/services/stations-service/internal/models"
	"evolve/backend/services/stations-service/internal/repository"
)

type fakeFinder struct {
	result models.SearchResult
	calls  []string
}

func (f *fakeFinder) FindStations(_ context.Context, location string) models.SearchResult {
	f.calls = append(f.calls, location)
	return f.result
}

// blockingFinder holds every call until release is closed.
type blockingFinder struct {
	result  models.SearchResult
	started chan struct{}
	release chan struct{}

	mu     sync.Mutex
	calls  int
	ctxErr error
}

func newBlockingFinder(result models.SearchResult) *blockingFinder {
	return &blockingFinder{
		result:  result,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (f *blockingFinder) FindStations(ctx context.Context, _ string) models.SearchResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	select {
	case f.started <- struct{}{}:
	default:
	}

	<-f.release
	if err := ctx.Err(); err != nil {
		f.mu.Lock()
		f.ctxErr = err
		f.mu.Unlock()
		return models.SearchResult{Unavailable: true}
	}
	return f.result
}

// fakeStatusStore mimics the append-only table and the latest-per-station query.
type fakeStatusStore struct {
	mu         sync.Mutex
	rows       []models.StationStatus
	lookupErr  error
	createErr  error
	lookups    int
	lookupArgs [][]string
	now        time.Time
}

func (s *fakeStatusStore) Create(_ context.Context, status *models.StationStatus) (*models.StationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.now.IsZero() {
		s.now = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	s.now = s.now.Add(time.Second)
	row := *status
	row.ID = int64(len(s.rows) + 1)
	row.UpdatedAt = s.now
	s.rows = append(s.rows, row)
	return &row, nil
}

func (s *fakeStatusStore) add(stationID string, status models.Status, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, models.StationStatus{
		ID:        int64(len(s.rows) + 1),
		StationID: stationID,
		Status:    status,
		UpdatedAt: at,
	})
}

func (s *fakeStatusStore) LatestByStationIDs(_ context.Context, ids []string) (map[string]models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	s.lookupArgs = append(s.lookupArgs, append([]string(nil), ids...))
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	best := make(map[string]models.StationStatus)
	for _, row := range s.rows {
		if !wanted[row.StationID] {
			continue
		}
		cur, ok := best[row.StationID]
		if !ok || row.UpdatedAt.After(cur.UpdatedAt) || (row.UpdatedAt.Equal(cur.UpdatedAt) && row.ID > cur.ID) {
			best[row.StationID] = row
		}
	}
	latest := make(map[string]models.Status, len(best))
	for id, row := range best {
		latest[id] = row.Status
	}
	return latest, nil
}

func (s *fakeStatusStore) ListByStation(_ context.Context, stationID string, limit int) ([]models.StationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	var out []models.StationStatus
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rows[i].StationID == stationID {
			out = append(out, s.rows[i])
		}
	}
	return out, nil
}

func (s *fakeStatusStore) count(stationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.StationID == stationID {
			n++
		}
	}
	return n
}

type fakeCache struct {
	entries map[string][]models.AugmentedStation
	getErr  error
	saves   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]models.AugmentedStation)}
}

func (c *fakeCache) Get(_ context.Context, session, query string) ([]models.AugmentedStation, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	stations, ok := c.entries[session+"|"+query]
	return stations, ok, nil
}

func (c *fakeCache) Save(_ context.Context, session, query string, stations []models.AugmentedStation) error {
	c.saves++
	c.entries[session+"|"+query] = stations
	return nil
}

type fakePublisher struct {
	published []models.StationStatus
}

func (p *fakePublisher) Publish(status models.StationStatus) {
	p.published = append(p.published, status)
}

type fakeCatalog struct {
	vehicles []models.Vehicle
	err      error
}

func (c *fakeCatalog) Years(context.Context) ([]int, error) {
	seen := map[int]bool{}
	var years []int
	for _, v := range c.vehicles {
		if !seen[v.ModelYear] {
			seen[v.ModelYear] = true
			years = append(years, v.ModelYear)
		}
	}
	return years, c.err
}

func (c *fakeCatalog) Manufacturers(_ context.Context, year int) ([]string, error) {
	var out []string
	for _, v := range c.vehicles {
		if v.ModelYear == year {
			out = append(out, v.Manufacturer)
		}
	}
	return out, c.err
}

func (c *fakeCatalog) Models(_ context.Context, year int, manufacturer string) ([]string, error) {
	var out []string
	for _, v := range c.vehicles {
		if v.ModelYear == year && v.Manufacturer == manufacturer {
			out = append(out, v.Model)
		}
	}
	return out, c.err
}

func (c *fakeCatalog) Find(_ context.Context, year int, manufacturer, model string) (*models.Vehicle, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, v := range c.vehicles {
		if v.ModelYear == year && v.Manufacturer == manufacturer && v.Model == model {
			found := v
			return &found, nil
		}
	}
	return nil, repository.ErrVehicleNotFound
}

type fakeRecorder struct {
	saved []models.Level2Submission
	err   error
}

func (r *fakeRecorder) Create(_ context.Context, s *models.Level2Submission) (*models.Level2Submission, error) {
	if r.err != nil {
		return nil, r.err
	}
	s.ID = int64(len(r.saved) + 1)
	r.saved = append(r.saved, *s)
	return s, nil
}

var errStoreDown = errors.New("store down")

func int64Ptr(v int64) *int64 { return &v }
