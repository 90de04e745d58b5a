package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DefaultFeedLimit  = 10
	trendingWindow    = 24 * time.Hour
	discoveryCacheTTL = 30 * time.Second
)

// discoveryCache is built on first use rather than at import time; a broken
// cache only costs the feeds their staleness window, never the process.
var discoveryCache = sync.OnceValue(newDiscoveryCache)

func newDiscoveryCache() *cache.Cache[[]models.Poll] {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when building discovery cache, feeds will be served uncached.")
		return nil
	}
	return cache.New[[]models.Poll](ristretto_store.NewRistretto(client))
}

func activePollFilter(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.Where("has_time_limit = ? OR end_time IS NULL OR end_time > ?", false, now)
}

// TrendingPolls ranks public polls created inside the trending window by
// vote velocity (total votes per hour since creation). A poll with no
// elapsed age scores zero rather than dividing toward infinity, so a
// brand-new poll cannot trend yet no matter how fast votes arrive. Ties
// break toward the newer poll.
func TrendingPolls(limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	now := time.Now()

	var candidates []models.Poll
	if err := activePollFilter(database.C, now).
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("is_public = ?", true).
		Where("created_at >= ?", now.Add(-trendingWindow)).
		Find(&candidates).Error; err != nil {
		return candidates, err
	}

	scores := make(map[uint]float64, len(candidates))
	for idx := range candidates {
		candidates[idx].Hydrate()
		ageHours := now.Sub(candidates[idx].CreatedAt).Hours()
		if ageHours > 0 {
			scores[candidates[idx].ID] = float64(candidates[idx].TotalVotes) / ageHours
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i].ID], scores[candidates[j].ID]
		if si != sj {
			return si > sj
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// RecentPolls lists the newest public polls that are still open for votes.
func RecentPolls(limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	var polls []models.Poll
	if err := activePollFilter(database.C, time.Now()).
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&polls).Error; err != nil {
		return polls, err
	}
	for idx := range polls {
		polls[idx].Hydrate()
	}

	return polls, nil
}

// PopularPolls ranks public polls by all-time vote total, closed ones
// included. The ordering aggregates the option counters in the store so it
// never depends on a cached total.
func PopularPolls(limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	var polls []models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("is_public = ?", true).
		Order("(SELECT COALESCE(SUM(votes), 0) FROM poll_options WHERE poll_options.poll_id = polls.id AND poll_options.deleted_at IS NULL) DESC").
		Limit(limit).
		Find(&polls).Error; err != nil {
		return polls, err
	}
	for idx := range polls {
		polls[idx].Hydrate()
	}

	return polls, nil
}

// Cached variants back the discovery endpoints. The feeds are side-effect
// free and recompute-safe, so a short staleness window is acceptable.

func TrendingPollsCached(limit int) ([]models.Poll, error) {
	return discoveryFromCache(fmt.Sprintf("discovery:trending:%d", limit), func() ([]models.Poll, error) {
		return TrendingPolls(limit)
	})
}

func PopularPollsCached(limit int) ([]models.Poll, error) {
	return discoveryFromCache(fmt.Sprintf("discovery:popular:%d", limit), func() ([]models.Poll, error) {
		return PopularPolls(limit)
	})
}

func discoveryFromCache(key string, compute func() ([]models.Poll, error)) ([]models.Poll, error) {
	feedCache := discoveryCache()
	if feedCache == nil {
		return compute()
	}

	ctx := context.Background()

	if polls, err := feedCache.Get(ctx, key); err == nil {
		return polls, nil
	}

	polls, err := compute()
	if err != nil {
		return polls, err
	}

	_ = feedCache.Set(ctx, key, polls, store.WithExpiration(discoveryCacheTTL))

	return polls, nil
}
