package services

import (
	"context"
	"errors"
	"log"

	"acupuntos/internal/datastore"
	"acupuntos/internal/datastore/redis_store"
	"acupuntos/internal/models"
	"acupuntos/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	PhotoURL    string  `json:"photoUrl"`
	Points      float64 `json:"points"`
}

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

// GetTop returns the highest lifetime earners with their profiles attached.
func (service *ServiceLeaderboard) GetTop(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = DEFAULT_LEADERBOARD_LIMIT
	}

	callback := func() ([]*LeaderboardEntry, error) {
		items, err := redis_store.GetLeaderboard(ctx, service.redisDB, LEADERBOARD_POINTS, limit)
		if err != nil {
			return nil, err
		}

		entries := make([]*LeaderboardEntry, 0, len(items))
		for _, item := range items {
			entry := &LeaderboardEntry{
				Rank:   item.Rank,
				UserID: item.UserID,
				Points: item.Score,
			}
			user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, item.UserID)
			if err == nil {
				entry.DisplayName = user.DisplayName
				entry.PhotoURL = user.PhotoURL
			}
			entries = append(entries, entry)
		}

		return entries, nil
	}

	entries, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardTop(LEADERBOARD_POINTS, limit), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return entries, nil
}

// GetUserRank returns the user's one-based position, 0 when unranked.
func (service *ServiceLeaderboard) GetUserRank(ctx context.Context, userID string) (int64, error) {
	rank, err := redis_store.GetRank(ctx, service.redisDB, LEADERBOARD_POINTS, userID)
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	return rank + 1, nil
}

// GetParticipantsCount returns how many users currently hold a score on
// the leaderboard.
func (service *ServiceLeaderboard) GetParticipantsCount(ctx context.Context) (int64, error) {
	count, err := redis_store.GetLeaderboardParticipantsCount(ctx, service.redisDB, LEADERBOARD_POINTS)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	return count, nil
}

// Rebuild repopulates the sorted set from the lifetime totals in postgres.
// The cron job runs this to reconcile drift from missed increments.
func (service *ServiceLeaderboard) Rebuild(ctx context.Context) error {
	users, err := datastore.GetAllUsers(ctx, service.readonlyPostgresDB)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	if err := redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_POINTS); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	for _, user := range users {
		_, err := redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_POINTS, &models.LeaderboardItem{
			UserID: user.ID,
			Score:  float64(user.TotalPointsEarned),
		})
		if err != nil {
			log.Println("leaderboard rebuild:", user.ID, err)
		}
	}

	return nil
}
