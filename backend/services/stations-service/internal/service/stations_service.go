package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"evolve/backend/services/stations-service/internal/metrics"
	"evolve/backend/services/stations-service/internal/models"
)

// Search types accepted by the station search form.
const (
	SearchTypeZip  = "zip"
	SearchTypeCity = "city"
)

// Advisory messages shown alongside an empty search.
const (
	MessageNoStations  = "No stations found or API unavailable. Please try again."
	MessageUnavailable = "Station data is temporarily unavailable."
)

const (
	zipMinLength       = 5
	zipMaxLength       = 10
	cityStateMaxLength = 100

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	// sharedLookupTimeout bounds a lookup shared by concurrent identical searches.
	sharedLookupTimeout = 30 * time.Second
)

// ConnectorTypes lists the connector filter values.
var ConnectorTypes = []string{"CHADEMO", "J1772COMBO", "TESLA"}

// StationFinder fetches DC fast chargers near a location. It never fails; see SearchResult.
type StationFinder interface {
	FindStations(ctx context.Context, location string) models.SearchResult
}

// StatusStore persists and reads local station reports.
type StatusStore interface {
	StatusLookup
	Create(ctx context.Context, status *models.StationStatus) (*models.StationStatus, error)
	ListByStation(ctx context.Context, stationID string, limit int) ([]models.StationStatus, error)
}

// SearchCache stores reconciled results per session and query.
type SearchCache interface {
	Get(ctx context.Context, session, query string) ([]models.AugmentedStation, bool, error)
	Save(ctx context.Context, session, query string, stations []models.AugmentedStation) error
}

// StatusPublisher fans new reports out to live subscribers.
type StatusPublisher interface {
	Publish(status models.StationStatus)
}

// SearchInput is the raw station search form.
type SearchInput struct {
	SearchType    string
	ZipCode       string
	CityState     string
	ConnectorType string
	Network       string
	Page          string
	// Session scopes cached results, normally the user id or empty for anonymous requests.
	Session string
}

func (in SearchInput) blank() bool {
	return strings.TrimSpace(in.SearchType) == "" &&
		strings.TrimSpace(in.ZipCode) == "" &&
		strings.TrimSpace(in.CityState) == ""
}

// SearchOutput is one page of reconciled stations plus an optional advisory message.
type SearchOutput struct {
	Page        Page[models.AugmentedStation] `json:"page"`
	Location    string                        `json:"location,omitempty"`
	Message     string                        `json:"message,omitempty"`
	Unavailable bool                          `json:"unavailable"`
	Cached      bool                          `json:"cached"`
}

// SubmitStatusInput is one user report.
type SubmitStatusInput struct {
	StationID string
	Status    string
	UserID    *int64
}

// StationsService implements station search and status reporting.
type StationsService struct {
	finder    StationFinder
	statuses  StatusStore
	cache     SearchCache
	publisher StatusPublisher
	logger    *zap.Logger

	inflight singleflight.Group
}

// NewStationsService builds service. cache and publisher may be nil.
func NewStationsService(
	finder StationFinder,
	statuses StatusStore,
	cache SearchCache,
	publisher StatusPublisher,
	logger *zap.Logger,
) *StationsService {
	return &StationsService{
		finder:    finder,
		statuses:  statuses,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

type normalizedSearch struct {
	searchType    string
	location      string
	connectorType string
	network       string
}

func (n normalizedSearch) cacheKey() string {
	q := url.Values{}
	q.Set("search_type", n.searchType)
	q.Set("location", strings.ToLower(n.location))
	q.Set("connector_type", n.connectorType)
	q.Set("network", strings.ToLower(n.network))
	return q.Encode()
}

func validateSearch(in SearchInput) (normalizedSearch, error) {
	verr := &ValidationError{}
	n := normalizedSearch{
		searchType:    strings.ToLower(strings.TrimSpace(in.SearchType)),
		connectorType: strings.ToUpper(strings.TrimSpace(in.ConnectorType)),
		network:       strings.TrimSpace(in.Network),
	}
	if n.searchType == "" {
		n.searchType = SearchTypeZip
	}

	switch n.searchType {
	case SearchTypeZip:
		n.location = strings.TrimSpace(in.ZipCode)
		switch {
		case n.location == "":
			verr.add("zip_code", "Zip code is required when searching by zip.")
		case len(n.location) < zipMinLength || len(n.location) > zipMaxLength:
			verr.add("zip_code", fmt.Sprintf("Zip code must be between %d and %d characters.", zipMinLength, zipMaxLength))
		}
	case SearchTypeCity:
		n.location = strings.TrimSpace(in.CityState)
		switch {
		case n.location == "":
			verr.add("city_state", "City and state are required when searching by city.")
		case len(n.location) > cityStateMaxLength:
			verr.add("city_state", fmt.Sprintf("City and state must be at most %d characters.", cityStateMaxLength))
		}
	default:
		verr.add("search_type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", in.SearchType))
	}

	if n.connectorType != "" && !containsString(ConnectorTypes, n.connectorType) {
		verr.add("connector_type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", in.ConnectorType))
	}

	if !verr.empty() {
		return normalizedSearch{}, verr
	}
	return n, nil
}

// Search validates the form, fetches and reconciles stations and returns the requested page.
// A blank form returns an empty first page without touching any upstream.
func (s *StationsService) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	if in.blank() {
		return &SearchOutput{Page: Paginate[models.AugmentedStation](nil, in.Page, PageSize)}, nil
	}

	query, err := validateSearch(in)
	if err != nil {
		return nil, err
	}

	stations, unavailable, cached, err := s.lookup(ctx, in.Session, query)
	if err != nil {
		return nil, err
	}

	out := &SearchOutput{
		Page:        Paginate(stations, in.Page, PageSize),
		Location:    query.location,
		Unavailable: unavailable,
		Cached:      cached,
	}
	if len(stations) == 0 {
		if unavailable {
			out.Message = MessageUnavailable
		} else {
			out.Message = MessageNoStations
		}
	}
	return out, nil
}

type lookupResult struct {
	stations    []models.AugmentedStation
	unavailable bool
}

// lookup serves a query from the cache or a shared upstream call. The shared call runs
// detached from any single caller; a caller that gives up gets its own context error.
func (s *StationsService) lookup(ctx context.Context, session string, query normalizedSearch) ([]models.AugmentedStation, bool, bool, error) {
	key := query.cacheKey()

	if s.cache != nil {
		stations, found, err := s.cache.Get(ctx, session, key)
		switch {
		case err != nil:
			s.logger.Warn("search cache read failed", zap.Error(err))
		case found:
			metrics.IncSearchCache(metrics.CacheHit)
			return stations, false, true, nil
		}
		metrics.IncSearchCache(metrics.CacheMiss)
	}

	ch := s.inflight.DoChan(session+"|"+key, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		result := s.finder.FindStations(sharedCtx, query.location)
		filtered := filterStations(result.Stations, query.connectorType, query.network)

		augmented, err := AttachLocalStatus(sharedCtx, filtered, s.statuses)
		if err != nil {
			s.logger.Error("failed to attach local statuses", zap.Error(err))
		}

		if s.cache != nil && !result.Unavailable {
			if err := s.cache.Save(sharedCtx, session, key, augmented); err != nil {
				s.logger.Warn("search cache write failed", zap.Error(err))
			}
		}
		return lookupResult{stations: augmented, unavailable: result.Unavailable}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, false, ctx.Err()
	case r := <-ch:
		res := r.Val.(lookupResult)
		return res.stations, res.unavailable, false, nil
	}
}

func filterStations(stations []models.Station, connectorType, network string) []models.Station {
	if connectorType == "" && network == "" {
		return stations
	}
	needle := strings.ToUpper(network)
	filtered := make([]models.Station, 0, len(stations))
	for _, station := range stations {
		if connectorType != "" && !containsString(station.ConnectorTypes, connectorType) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToUpper(station.Network), needle) {
			continue
		}
		filtered = append(filtered, station)
	}
	return filtered
}

// SubmitStatus records a new report for a station. Prior reports are kept.
func (s *StationsService) SubmitStatus(ctx context.Context, in SubmitStatusInput) (*models.StationStatus, error) {
	if in.UserID == nil {
		return nil, ErrUnauthenticated
	}

	verr := &ValidationError{}
	stationID := strings.TrimSpace(in.StationID)
	if stationID == "" {
		verr.add("station_id", "This field is required.")
	}
	status, err := models.ParseStatus(in.Status)
	if err != nil {
		if strings.TrimSpace(in.Status) == "" {
			verr.add("status", "This field is required.")
		} else {
			verr.add("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", in.Status))
		}
	}
	if !verr.empty() {
		return nil, verr
	}

	userID := *in.UserID
	created, err := s.statuses.Create(ctx, &models.StationStatus{
		StationID: stationID,
		Status:    status,
		UserID:    &userID,
	})
	if err != nil {
		return nil, fmt.Errorf("submit status: %w", err)
	}

	metrics.IncStatusSubmission(string(created.Status))
	if s.publisher != nil {
		s.publisher.Publish(*created)
	}

	s.logger.Info("station status submitted",
		zap.String("station_id", created.StationID),
		zap.String("status", string(created.Status)),
		zap.Int64("user_id", userID),
	)
	return created, nil
}

// StatusHistory returns the most recent reports for one station, newest first.
// rawLimit defaults to 20 and is capped at 100.
func (s *StationsService) StatusHistory(ctx context.Context, stationID, rawLimit string) ([]models.StationStatus, error) {
	verr := &ValidationError{}
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		verr.add("station_id", "This field is required.")
	}
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(rawLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.add("limit", "Enter a whole number greater than zero.")
		} else {
			limit = min(n, maxHistoryLimit)
		}
	}
	if !verr.empty() {
		return nil, verr
	}

	history, err := s.statuses.ListByStation(ctx, stationID, limit)
	if err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	if history == nil {
		history = []models.StationStatus{}
	}
	return history, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
