package caisse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Stats serves daily caisse aggregates with a Redis cache in front of the
// store. Concurrent requests for the same range are collapsed.
type Stats struct {
	repo  Repository
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewStats constructs a Stats reader.
func NewStats(repo Repository, cache *redis.Client, ttl time.Duration) *Stats {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Stats{repo: repo, cache: cache, ttl: ttl}
}

// Daily returns per-day totals for date_vente in [from, to).
func (s *Stats) Daily(ctx context.Context, from, to time.Time) ([]DailyTotal, error) {
	key := fmt.Sprintf("gescom:caisse:daily:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		if s.cache != nil {
			if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
				var cached []DailyTotal
				if err := json.Unmarshal(raw, &cached); err == nil {
					return cached, nil
				}
			}
		}

		totals, err := s.repo.DailyTotals(ctx, from, to)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if data, err := json.Marshal(totals); err == nil {
				_ = s.cache.Set(ctx, key, data, s.ttl).Err()
			}
		}
		return totals, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]DailyTotal), nil
}
