package services

import (
	"context"
	"errors"
	"log"
	"time"

	"acupuntos/internal/datastore"
	"acupuntos/internal/models"
	"acupuntos/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceRedemption struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceReward       *ServiceReward
	serviceGamification *ServiceGamification
}

func NewServiceRedemption(container *do.Injector) (*ServiceRedemption, error) {
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

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	return &ServiceRedemption{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceReward, serviceGamification}, nil
}

// Redeem debits the reward's cost and opens a pending redemption awaiting
// admin review. The points leave the balance immediately, the cost is
// snapshotted so later price changes don't affect refunds.
func (service *ServiceRedemption) Redeem(ctx context.Context, userID string, rewardID string) (*models.Redemption, error) {
	mutex := service.rs.NewMutex(LockKeyUserRedeem(userID))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrRedeemLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	reward, err := datastore.GetReward(ctx, service.postgresDB, rewardID)
	if err != nil {
		return nil, errorx.Wrap(ErrRewardNotFound, errorx.NotExist)
	}
	if !reward.IsActive {
		return nil, errorx.Wrap(ErrRewardInactive, errorx.Invalid)
	}
	if reward.Expired(time.Now()) {
		return nil, errorx.Wrap(ErrRewardExpired, errorx.Invalid)
	}

	if reward.MaxRedemptionsPerUser > 0 {
		count, err := datastore.CountUserRedemptionsForReward(ctx, service.postgresDB, userID, rewardID)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		if count >= reward.MaxRedemptionsPerUser {
			return nil, errorx.Wrap(ErrRedemptionLimit, errorx.Invalid)
		}
	}

	redemption, err := datastore.RedeemReward(ctx, service.postgresDB, userID, reward)
	switch {
	case errors.Is(err, datastore.ErrUserNotFound):
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	case errors.Is(err, datastore.ErrInsufficientPoints):
		return nil, errorx.Wrap(ErrInsufficientPoints, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}
	redemption.Reward = reward

	// Committed; experience is best effort from here on.
	xp := reward.PointsCost / XP_REDEMPTION_DIVISOR
	if xp < 1 {
		xp = 1
	}
	if _, err := service.serviceGamification.AddExperience(ctx, userID, xp, "canje de recompensa"); err != nil {
		log.Println("redemption experience award:", err)
	}

	service.clearRedemptionCaches(ctx, userID)

	return redemption, nil
}

// SetStatus resolves a pending redemption. Completing is final; cancelling
// refunds the snapshotted cost.
func (service *ServiceRedemption) SetStatus(ctx context.Context, redemptionID string, status string, notes string) (*models.Redemption, error) {
	if !models.ValidRedemptionStatus(status) || status == models.RedemptionPending {
		return nil, errorx.Wrap(ErrInvalidTransition, errorx.Invalid)
	}

	redemption, err := datastore.SetRedemptionStatus(ctx, service.postgresDB, redemptionID, status, notes)
	switch {
	case errors.Is(err, datastore.ErrRedemptionNotFound):
		return nil, errorx.Wrap(ErrRedemptionNotFound, errorx.NotExist)
	case errors.Is(err, datastore.ErrInvalidTransition):
		return nil, errorx.Wrap(ErrInvalidTransition, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if status == models.RedemptionCompleted {
		if _, err := service.serviceGamification.CheckAndAwardBadges(ctx, redemption.UserID); err != nil {
			log.Println("redemption badge evaluation:", err)
		}
	}

	service.clearRedemptionCaches(ctx, redemption.UserID)

	return redemption, nil
}

func (service *ServiceRedemption) GetUserRedemptions(ctx context.Context, userID string) ([]*models.Redemption, error) {
	callback := func() ([]*models.Redemption, error) {
		redemptions, err := datastore.GetUserRedemptions(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return nil, err
		}
		service.attachRewards(ctx, redemptions)
		return redemptions, nil
	}

	redemptions, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserRedemptions(userID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return redemptions, nil
}

func (service *ServiceRedemption) GetPendingRedemptions(ctx context.Context) ([]*models.Redemption, error) {
	redemptions, err := datastore.GetRedemptionsByStatus(ctx, service.readonlyPostgresDB, models.RedemptionPending)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	service.attachRewards(ctx, redemptions)
	return redemptions, nil
}

func (service *ServiceRedemption) GetAllRedemptions(ctx context.Context) ([]*models.Redemption, error) {
	redemptions, err := datastore.GetAllRedemptions(ctx, service.readonlyPostgresDB)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	service.attachRewards(ctx, redemptions)
	return redemptions, nil
}

func (service *ServiceRedemption) attachRewards(ctx context.Context, redemptions []*models.Redemption) {
	rewards, err := datastore.GetAllRewards(ctx, service.readonlyPostgresDB)
	if err != nil {
		log.Println("attach rewards:", err)
		return
	}

	byID := make(map[string]*models.Reward, len(rewards))
	for _, reward := range rewards {
		byID[reward.ID] = reward
	}
	for _, redemption := range redemptions {
		redemption.Reward = byID[redemption.RewardID]
	}
}

func (service *ServiceRedemption) clearRedemptionCaches(ctx context.Context, userID string) {
	keys := []string{
		DBKeyUser(userID),
		DBKeyMe(userID),
		DBKeyUserBalance(userID),
		DBKeyUserStats(userID),
		DBKeyUserRedemptions(userID),
		DBKeyUserTransactions(userID),
	}
	for _, key := range keys {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println(err)
		}
	}
}
