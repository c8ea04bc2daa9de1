package services

import (
	"context"
	"errors"
	"log"

	"acupuntos/internal/datastore"
	"acupuntos/internal/datastore/redis_store"
	"acupuntos/internal/interfaces"
	"acupuntos/internal/models"
	"acupuntos/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceLedger struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	limiter            interfaces.Limiter

	serviceGamification *ServiceGamification
}

func NewServiceLedger(container *do.Injector) (*ServiceLedger, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLedger{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, limiter, serviceGamification}, nil
}

func (service *ServiceLedger) GetBalance(ctx context.Context, userID string) (int, error) {
	callback := func() (int, error) {
		return datastore.GetUserPoints(ctx, service.readonlyPostgresDB, userID)
	}

	points, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserBalance(userID), CACHE_TTL_5_SECONDS, callback)
	if errors.Is(err, datastore.ErrUserNotFound) {
		return 0, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	return points, nil
}

func (service *ServiceLedger) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > DEFAULT_TRANSACTION_LIMIT {
		limit = DEFAULT_TRANSACTION_LIMIT
	}

	// Always cache the full first page; the requested limit slices from it,
	// so every page size shares one cache entry and one invalidation.
	callback := func() ([]*models.Transaction, error) {
		return datastore.GetUserTransactions(ctx, service.readonlyPostgresDB, userID, DEFAULT_TRANSACTION_LIMIT)
	}

	transactions, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserTransactions(userID), CACHE_TTL_5_SECONDS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return firstTransactions(transactions, limit), nil
}

// firstTransactions takes the newest limit entries from an already
// newest-first list.
func firstTransactions(transactions []*models.Transaction, limit int) []*models.Transaction {
	if limit <= 0 || len(transactions) <= limit {
		return transactions
	}
	return transactions[:limit]
}

// Transfer moves points between two users atomically and returns both
// resulting balances. The sender earns experience proportional to the
// amount once the transfer is committed.
func (service *ServiceLedger) Transfer(ctx context.Context, fromUserID string, toUserID string, amount int, description string) (*datastore.TransferResult, error) {
	if amount <= 0 {
		return nil, errorx.Wrap(ErrInvalidAmount, errorx.Invalid)
	}
	if fromUserID == toUserID {
		return nil, errorx.Wrap(ErrSelfTransfer, errorx.Invalid)
	}

	if err := service.limiter.Allow(ctx, LimitKeyTransfer(fromUserID), redis_rate.PerMinute(TRANSFER_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyUserTransfer(fromUserID))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrTransferLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	result, err := datastore.TransferPoints(ctx, service.postgresDB, fromUserID, toUserID, amount, description)
	switch {
	case errors.Is(err, datastore.ErrUserNotFound):
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	case errors.Is(err, datastore.ErrInsufficientPoints):
		return nil, errorx.Wrap(ErrInsufficientPoints, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	// Committed; gamification side effects must not fail the transfer.
	xp := amount / XP_TRANSFER_DIVISOR
	if xp < 1 {
		xp = 1
	}
	if _, err := service.serviceGamification.AddExperience(ctx, fromUserID, xp, "transferencia enviada"); err != nil {
		log.Println("transfer experience award:", err)
	}
	if _, err := service.serviceGamification.CheckAndAwardBadges(ctx, toUserID); err != nil {
		log.Println("transfer badge evaluation:", err)
	}

	if err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_POINTS, toUserID, float64(amount)); err != nil {
		log.Println("transfer leaderboard update:", err)
	}

	service.clearLedgerCaches(ctx, fromUserID, toUserID)

	return result, nil
}

// AssignPoints credits points to a user outside of a transfer, recorded as
// a reward transaction. Admin bonuses and the welcome grant go through
// here.
func (service *ServiceLedger) AssignPoints(ctx context.Context, userID string, amount int, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, errorx.Wrap(ErrInvalidAmount, errorx.Invalid)
	}

	record, err := datastore.AssignPoints(ctx, service.postgresDB, userID, amount, description)
	switch {
	case errors.Is(err, datastore.ErrUserNotFound):
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if _, err := service.serviceGamification.CheckAndAwardBadges(ctx, userID); err != nil {
		log.Println("assign badge evaluation:", err)
	}

	if err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_POINTS, userID, float64(amount)); err != nil {
		log.Println("assign leaderboard update:", err)
	}

	service.clearLedgerCaches(ctx, userID)

	return record, nil
}

func (service *ServiceLedger) clearLedgerCaches(ctx context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		keys := []string{
			DBKeyUser(userID),
			DBKeyMe(userID),
			DBKeyUserBalance(userID),
			DBKeyUserStats(userID),
			DBKeyUserTransactions(userID),
		}
		for _, key := range keys {
			if err := service.cache.Delete(ctx, key); err != nil {
				log.Println(err)
			}
		}
	}
}
