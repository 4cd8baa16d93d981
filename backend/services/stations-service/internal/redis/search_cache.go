package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"evolve/backend/services/stations-service/internal/models"
)

const (
	searchKeyPrefix  = "stations:search"
	AnonymousSession = "anon"
	DefaultSearchTTL = 15 * time.Minute
)

// SearchCache keeps reconciled search results per requester.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache returns redis-backed cache.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	return &SearchCache{client: client, ttl: ttl}
}

// SearchKey derives the storage key for a session and a normalised query string.
func SearchKey(session, query string) string {
	if session == "" {
		session = AnonymousSession
	}
	sum := xxhash.Sum64String(query)
	return fmt.Sprintf("%s:%s:%s", searchKeyPrefix, session, strconv.FormatUint(sum, 16))
}

// Get returns cached stations. found is false on a miss.
func (c *SearchCache) Get(ctx context.Context, session, query string) ([]models.AugmentedStation, bool, error) {
	raw, err := c.client.Get(ctx, SearchKey(session, query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stations []models.AugmentedStation
	if err := json.Unmarshal(raw, &stations); err != nil {
		return nil, false, err
	}
	return stations, true, nil
}

// Save caches stations for the configured TTL.
func (c *SearchCache) Save(ctx context.Context, session, query string, stations []models.AugmentedStation) error {
	if stations == nil {
		stations = []models.AugmentedStation{}
	}
	data, err := json.Marshal(stations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, SearchKey(session, query), data, c.ttl).Err()
}
