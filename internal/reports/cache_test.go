package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newCacheFixture(t *testing.T) (*CachedSummaries, *fakeRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &fakeRepo{
		totals:      map[time.Time]PeriodTotals{},
		receivables: decimal.Zero,
	}
	cache := NewCachedSummaries(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo), rdb, time.Minute)
	return cache, repo, mr
}

func TestCachedSummaries(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("second read hits the cache", func(t *testing.T) {
		cache, repo, _ := newCacheFixture(t)
		repo.totals[from] = PeriodTotals{GrossRevenue: dec("500"), SalesCount: 2}

		first, err := cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		callsAfterFirst := repo.calls

		second, err := cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		require.Equal(t, callsAfterFirst, repo.calls, "cached read must not recompute")
		require.True(t, second.GrossRevenue.Equal(first.GrossRevenue))
	})

	t.Run("different users never share entries", func(t *testing.T) {
		cache, _, mr := newCacheFixture(t)

		_, err := cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		_, err = cache.Summary(context.Background(), 2, from, to)
		require.NoError(t, err)

		require.True(t, mr.Exists(summaryKey(1, from, to)))
		require.True(t, mr.Exists(summaryKey(2, from, to)))
	})

	t.Run("invalidate drops only the user's entries", func(t *testing.T) {
		cache, repo, mr := newCacheFixture(t)

		_, err := cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		_, err = cache.Summary(context.Background(), 2, from, to)
		require.NoError(t, err)

		cache.Invalidate(context.Background(), 1)
		require.False(t, mr.Exists(summaryKey(1, from, to)))
		require.True(t, mr.Exists(summaryKey(2, from, to)))

		callsBefore := repo.calls
		_, err = cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		require.Greater(t, repo.calls, callsBefore, "invalidated entry recomputes")
	})

	t.Run("expired entries recompute", func(t *testing.T) {
		cache, repo, mr := newCacheFixture(t)

		_, err := cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		callsAfterFirst := repo.calls

		mr.FastForward(2 * time.Minute)

		_, err = cache.Summary(context.Background(), 1, from, to)
		require.NoError(t, err)
		require.Greater(t, repo.calls, callsAfterFirst)
	})
}
