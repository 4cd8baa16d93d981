package redisstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"evolve/backend/services/stations-service/internal/models"
)

func TestSearchKey(t *testing.T) {
	a := SearchKey("42", "search_type=zip&zip_code=79101")
	b := SearchKey("42", "search_type=zip&zip_code=79101")
	if a != b {
		t.Fatalf("expected stable key, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "stations:search:42:") {
		t.Fatalf("unexpected key shape %q", a)
	}
	if SearchKey("42", "search_type=zip&zip_code=79102") == a {
		t.Fatalf("different queries must not share a key")
	}
	if SearchKey("7", "search_type=zip&zip_code=79101") == a {
		t.Fatalf("different sessions must not share a key")
	}
	if !strings.HasPrefix(SearchKey("", "q"), "stations:search:anon:") {
		t.Fatalf("expected anonymous session fallback")
	}
}

func TestSearchCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	cache := NewSearchCache(client, time.Minute)
	session := fmt.Sprintf("it-%d", time.Now().UnixNano())
	query := "search_type=zip&zip_code=79101"

	if _, found, err := cache.Get(ctx, session, query); err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	broken := models.StatusBroken
	stations := []models.AugmentedStation{
		{Station: models.Station{ID: "12345", Name: "Test Supercharger", DCFastCount: 8, MaxPowerKW: 250}, LocalStatus: &broken},
		{Station: models.Station{ID: "67890", Name: "Test EA Station", DCFastCount: 4, MaxPowerKW: 350}},
	}
	if err := cache.Save(ctx, session, query, stations); err != nil {
		t.Fatalf("save: %v", err)
	}
	defer client.Del(ctx, SearchKey(session, query))

	got, found, err := cache.Get(ctx, session, query)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if len(got) != 2 || got[0].ID != "12345" || got[0].LocalStatus == nil || *got[0].LocalStatus != models.StatusBroken {
		t.Fatalf("unexpected cached stations %+v", got)
	}
	if got[1].LocalStatus != nil {
		t.Fatalf("expected nil local status to survive caching")
	}

	ttl, err := client.TTL(ctx, SearchKey(session, query)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v (err %v)", ttl, err)
	}
}
