package services

import (
	"context"
	"log"
	"time"

	"acupuntos/internal/datastore"
	"acupuntos/internal/models"
	"acupuntos/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceReward struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
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

	return &ServiceReward{container, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceReward) GetActiveRewards(ctx context.Context) ([]*models.Reward, error) {
	callback := func() ([]*models.Reward, error) {
		return datastore.GetActiveRewards(ctx, service.readonlyPostgresDB)
	}

	rewards, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyActiveRewards(), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return rewards, nil
}

func (service *ServiceReward) GetAllRewards(ctx context.Context) ([]*models.Reward, error) {
	rewards, err := datastore.GetAllRewards(ctx, service.readonlyPostgresDB)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return rewards, nil
}

func (service *ServiceReward) GetReward(ctx context.Context, rewardID string) (*models.Reward, error) {
	reward, err := datastore.GetReward(ctx, service.readonlyPostgresDB, rewardID)
	if err != nil {
		return nil, errorx.Wrap(ErrRewardNotFound, errorx.NotExist)
	}
	return reward, nil
}

func (service *ServiceReward) CreateReward(ctx context.Context, reward *models.Reward) (*models.Reward, error) {
	if reward.PointsCost <= 0 {
		return nil, errorx.Wrap(ErrInvalidAmount, errorx.Invalid)
	}

	created, err := datastore.InsertReward(ctx, service.postgresDB, reward)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.clearCatalogCache(ctx)
	return created, nil
}

func (service *ServiceReward) UpdateReward(ctx context.Context, reward *models.Reward) (*models.Reward, error) {
	if reward.PointsCost <= 0 {
		return nil, errorx.Wrap(ErrInvalidAmount, errorx.Invalid)
	}

	updated, err := datastore.UpdateReward(ctx, service.postgresDB, reward)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.clearCatalogCache(ctx)
	return updated, nil
}

func (service *ServiceReward) DeleteReward(ctx context.Context, rewardID string) error {
	if err := datastore.DeleteReward(ctx, service.postgresDB, rewardID); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	service.clearCatalogCache(ctx)
	return nil
}

// DeactivateExpired flips is_active off for every reward whose expiry date
// has passed. Run from the cron sweep.
func (service *ServiceReward) DeactivateExpired(ctx context.Context) (int64, error) {
	affected, err := datastore.DeactivateExpiredRewards(ctx, service.postgresDB, time.Now())
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	if affected > 0 {
		service.clearCatalogCache(ctx)
	}
	return affected, nil
}

func (service *ServiceReward) clearCatalogCache(ctx context.Context) {
	if err := service.cache.Delete(ctx, DBKeyActiveRewards()); err != nil {
		log.Println(err)
	}
}
