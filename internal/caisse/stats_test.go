package caisse

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	memoryRepo
	dailyCalls atomic.Int32
	totals     []DailyTotal
}

func (r *countingRepo) DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error) {
	r.dailyCalls.Add(1)
	return r.totals, nil
}

func TestDailyStatsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	repo := &countingRepo{totals: []DailyTotal{{Day: day, Count: 3, Total: 120.50}}}
	stats := NewStats(repo, client, time.Minute)
	ctx := context.Background()

	from := day
	to := day.AddDate(0, 0, 7)

	first, err := stats.Daily(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.InDelta(t, 120.50, first[0].Total, 0.0001)

	second, err := stats.Daily(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int32(1), repo.dailyCalls.Load())
}

func TestDailyStatsCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingRepo{}
	stats := NewStats(repo, client, time.Minute)
	ctx := context.Background()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	_, err := stats.Daily(ctx, from, to)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = stats.Daily(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, int32(2), repo.dailyCalls.Load())
}

func TestDailyStatsWithoutCache(t *testing.T) {
	repo := &countingRepo{}
	stats := NewStats(repo, nil, 0)

	_, err := stats.Daily(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	require.NoError(t, err)
	require.Equal(t, int32(1), repo.dailyCalls.Load())
}
