package services

import (
	"context"
	"log"
	"time"

	"acupuntos/internal/datastore"
	"acupuntos/internal/models"
	"acupuntos/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

type Statistics struct {
	TotalUsers        int `json:"totalUsers"`
	TotalPoints       int `json:"totalPoints"`
	TotalTransactions int `json:"totalTransactions"`
	TotalRedemptions  int `json:"totalRedemptions"`
	ActiveRewards     int `json:"activeRewards"`
}

type ServiceUser struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig       *ServiceConfig
	serviceLedger       *ServiceLedger
	serviceGamification *ServiceGamification
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceLedger, err := do.Invoke[*ServiceLedger](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceLedger, serviceGamification}, nil
}

// FindOrCreateUser looks the authenticated user up, creating the profile on
// first sign-in. New users receive the welcome bonus.
func (service *ServiceUser) FindOrCreateUser(ctx context.Context, authUser *models.UserFromAuth) (*models.User, error) {
	exists, err := datastore.CheckUserExists(ctx, service.postgresDB, authUser.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if exists {
		user, err := datastore.FindUserByID(ctx, service.postgresDB, authUser.ID)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		user.LastLogin = time.Now()
		user.DisplayName = authUser.DisplayName
		user.PhotoURL = authUser.PhotoURL
		if _, err := datastore.UpdateUserProfile(ctx, service.postgresDB, user); err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		service.clearUserCaches(ctx, user.ID)
		return user, nil
	}

	now := time.Now()
	user := &models.User{
		ID:          authUser.ID,
		Email:       authUser.Email,
		DisplayName: authUser.DisplayName,
		PhotoURL:    authUser.PhotoURL,
		Role:        models.RoleUser,
		Level:       1,
		CreatedAt:   now,
		LastLogin:   now,
	}
	if authUser.Role == models.RoleAdmin {
		user.Role = models.RoleAdmin
	}

	user, err = datastore.CreateUser(ctx, service.postgresDB, user)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	user.IsNewUser = true

	welcomeBonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_WELCOME_BONUS, DEFAULT_WELCOME_BONUS)
	if welcomeBonus > 0 {
		if _, err := service.serviceLedger.AssignPoints(ctx, user.ID, welcomeBonus, "Bono de bienvenida"); err != nil {
			log.Println("welcome bonus:", err)
		} else {
			user.Points = welcomeBonus
			user.TotalPointsEarned = welcomeBonus
		}
	}

	return user, nil
}

// Me returns the caller's profile with earned badges attached.
func (service *ServiceUser) Me(ctx context.Context, userID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return nil, err
		}

		badges, err := service.serviceGamification.GetUserBadges(ctx, userID)
		if err != nil {
			return nil, err
		}
		user.Badges = badges

		return user, nil
	}

	user, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyMe(userID), CACHE_TTL_5_SECONDS, callback)
	if err != nil {
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}

	return user, nil
}

func (service *ServiceUser) GetUser(ctx context.Context, userID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
	}

	user, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}

	return user, nil
}

func (service *ServiceUser) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := datastore.GetAllUsers(ctx, service.readonlyPostgresDB)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return users, nil
}

func (service *ServiceUser) SearchUsers(ctx context.Context, term string, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > DEFAULT_TRANSACTION_LIMIT {
		limit = DEFAULT_TRANSACTION_LIMIT
	}

	users, err := datastore.SearchUsers(ctx, service.readonlyPostgresDB, term, limit)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return users, nil
}

// GetStatistics aggregates the admin dashboard counters, fanned out in
// parallel.
func (service *ServiceUser) GetStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		stats.TotalUsers, err = datastore.CountUsers(ctx, service.readonlyPostgresDB)
		return err
	})
	group.Go(func() error {
		var err error
		stats.TotalPoints, err = datastore.SumUserPoints(ctx, service.readonlyPostgresDB)
		return err
	})
	group.Go(func() error {
		var err error
		stats.TotalTransactions, err = datastore.CountTransactions(ctx, service.readonlyPostgresDB)
		return err
	})
	group.Go(func() error {
		var err error
		stats.TotalRedemptions, err = datastore.CountRedemptions(ctx, service.readonlyPostgresDB)
		return err
	})
	group.Go(func() error {
		var err error
		stats.ActiveRewards, err = datastore.CountActiveRewards(ctx, service.readonlyPostgresDB)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &stats, nil
}

func (service *ServiceUser) clearUserCaches(ctx context.Context, userID string) {
	for _, key := range []string{DBKeyUser(userID), DBKeyMe(userID)} {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println(err)
		}
	}
}
