package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

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

const baseXPMultiplier = 100

// CalculateLevel maps cumulative experience to a level. Level 1 covers
// 0-100 XP, level 2 covers 100-400, level 3 covers 400-900 and so on.
func CalculateLevel(experience int) int {
	if experience < 0 {
		return 1
	}

	level := int(math.Floor(math.Sqrt(float64(experience)/baseXPMultiplier))) + 1
	if level < 1 {
		return 1
	}
	return level
}

// ExperienceForLevel is the inverse of CalculateLevel: the minimum
// cumulative experience at which the given level starts.
func ExperienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * (level - 1) * baseXPMultiplier
}

func ExperienceToNextLevel(experience int) int {
	return ExperienceForLevel(CalculateLevel(experience)+1) - experience
}

// LevelProgress is the fraction of the current level band already earned,
// clamped to [0, 1].
func LevelProgress(experience int) float64 {
	level := CalculateLevel(experience)
	floor := ExperienceForLevel(level)
	ceil := ExperienceForLevel(level + 1)
	if ceil <= floor {
		return 1
	}

	progress := float64(experience-floor) / float64(ceil-floor)
	return math.Max(0, math.Min(1, progress))
}

// nextStreak decides the outcome of a check-in attempt. It reports whether
// the check-in is allowed and the streak value to persist if it is.
func nextStreak(lastCheckIn *time.Time, consecutiveDays int, now time.Time) (bool, int) {
	if lastCheckIn == nil {
		return true, 1
	}

	elapsed := now.Sub(*lastCheckIn)
	if elapsed < CHECKIN_MIN_INTERVAL {
		return false, consecutiveDays
	}
	if elapsed > CHECKIN_BREAK_INTERVAL {
		// broken streak restarts at day one
		return true, 1
	}

	return true, consecutiveDays + 1
}

func checkInBonus(streak, base, step, maxStreakBonus int) int {
	streakBonus := streak * step
	if streakBonus > maxStreakBonus {
		streakBonus = maxStreakBonus
	}
	return base + streakBonus
}

// badgeEligible decides whether the user has earned a badge. The level
// and lifetime-points thresholds gate every badge; category badges add
// one more condition on top, reinterpreting the threshold columns for
// it: generoso and coleccionista scale required_points into an action
// count, dedicado reads required_level as streak days. sentCount and
// completedCount are only consulted for the categories that need them.
func badgeEligible(badge *models.Badge, user *models.User, sentCount, completedCount int) bool {
	if badge.RequiredLevel > 0 && user.Level < badge.RequiredLevel {
		return false
	}
	if badge.RequiredPoints > 0 && user.TotalPointsEarned < badge.RequiredPoints {
		return false
	}

	switch badge.Category {
	case models.BadgeCategoryGeneroso:
		return sentCount >= badge.RequiredPoints/10
	case models.BadgeCategoryColeccionista:
		return completedCount >= badge.RequiredPoints/50
	case models.BadgeCategoryDedicado:
		return user.ConsecutiveDays >= badge.RequiredLevel
	}

	return true
}

type CheckInResult struct {
	Success bool `json:"success"`
	Bonus   int  `json:"bonus"`
	Streak  int  `json:"streak"`
}

type ServiceGamification struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	limiter            interfaces.Limiter

	serviceConfig *ServiceConfig
}

func NewServiceGamification(container *do.Injector) (*ServiceGamification, error) {
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGamification{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, limiter, serviceConfig}, nil
}

// AddExperience adds amount to the user's cumulative experience and
// returns how many levels the user crossed. Crossing a level triggers a
// badge evaluation.
func (service *ServiceGamification) AddExperience(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, errorx.Wrap(ErrInvalidAmount, errorx.Invalid)
	}

	// Read from the write db, replica lag would hand back a stale level.
	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return 0, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}
	oldLevel := user.Level

	_, newLevel, err := datastore.AddUserExperience(ctx, service.postgresDB, userID, amount, CalculateLevel)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	log.Println("AddExperience:", "user:", userID, "amount:", amount, "reason:", reason, "level:", oldLevel, "->", newLevel)

	if newLevel > oldLevel {
		if _, err := service.CheckAndAwardBadges(ctx, userID); err != nil {
			log.Println("badge evaluation after level up:", err)
		}
	}

	service.clearUserCaches(ctx, userID)

	if newLevel <= oldLevel {
		return 0, nil
	}
	return newLevel - oldLevel, nil
}

// CheckAndAwardBadges grants every active badge the user is now eligible
// for and does not already hold. The unique (user_id, badge_id) index makes
// re-evaluation a no-op.
func (service *ServiceGamification) CheckAndAwardBadges(ctx context.Context, userID string) ([]*models.Badge, error) {
	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}

	badges, err := service.GetActiveBadges(ctx)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	held, err := datastore.GetUserBadges(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	heldIDs := make(map[string]bool, len(held))
	for _, ub := range held {
		heldIDs[ub.BadgeID] = true
	}

	// Counted lazily, most badges never look at them.
	sentCount, completedCount := -1, -1

	var awarded []*models.Badge
	for _, badge := range badges {
		if heldIDs[badge.ID] {
			continue
		}

		if badge.Category == models.BadgeCategoryGeneroso && sentCount < 0 {
			sentCount, err = datastore.CountSentTransactions(ctx, service.readonlyPostgresDB, userID)
			if err != nil {
				return awarded, errorx.Wrap(err, errorx.Service)
			}
		}
		if badge.Category == models.BadgeCategoryColeccionista && completedCount < 0 {
			completedCount, err = datastore.CountCompletedRedemptions(ctx, service.readonlyPostgresDB, userID)
			if err != nil {
				return awarded, errorx.Wrap(err, errorx.Service)
			}
		}

		if !badgeEligible(badge, user, sentCount, completedCount) {
			continue
		}

		inserted, err := datastore.InsertUserBadge(ctx, service.postgresDB, &models.UserBadge{
			UserID:   userID,
			BadgeID:  badge.ID,
			EarnedAt: time.Now(),
		})
		if err != nil {
			return awarded, errorx.Wrap(err, errorx.Service)
		}
		if !inserted {
			continue
		}

		awarded = append(awarded, badge)
		log.Println("badge awarded:", "user:", userID, "badge:", badge.ID)

		if err := redis_store.PushBadgeEvent(ctx, service.redisDB, &models.BadgeEvent{
			UserID:    userID,
			BadgeID:   badge.ID,
			BadgeName: badge.Name,
			Rarity:    badge.Rarity,
			EarnedAt:  time.Now().Unix(),
		}); err != nil {
			log.Println("push badge event:", err)
		}
	}

	if len(awarded) > 0 {
		if err := service.cache.Delete(ctx, DBKeyUserBadges(userID)); err != nil {
			log.Println(err)
		}
		if err := service.cache.Delete(ctx, DBKeyUserStats(userID)); err != nil {
			log.Println(err)
		}
	}

	return awarded, nil
}

// DailyCheckIn runs the streak state machine and credits the bonus. A
// rejected attempt returns Success=false with the streak untouched.
func (service *ServiceGamification) DailyCheckIn(ctx context.Context, userID string) (*CheckInResult, error) {
	if err := service.limiter.Allow(ctx, LimitKeyCheckIn(userID), redis_rate.PerMinute(CHECKIN_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyUserCheckIn(userID))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrCheckInLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}

	now := time.Now()
	ok, streak := nextStreak(user.LastCheckIn, user.ConsecutiveDays, now)
	if !ok {
		return &CheckInResult{Success: false, Streak: user.ConsecutiveDays}, nil
	}

	base, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_BASE_BONUS, DEFAULT_CHECKIN_BASE_BONUS)
	step, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_STREAK_STEP, DEFAULT_CHECKIN_STREAK_STEP)
	maxStreakBonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_MAX_STREAK, DEFAULT_CHECKIN_MAX_STREAK)
	bonus := checkInBonus(streak, base, step, maxStreakBonus)

	description := fmt.Sprintf("Check-in diario (Racha: %d días)", streak)
	err = datastore.CheckInUpdate(ctx, service.postgresDB, userID, bonus, streak, now, now.Add(-CHECKIN_MIN_INTERVAL), description)
	if err == datastore.ErrAlreadyCheckedIn {
		return &CheckInResult{Success: false, Streak: user.ConsecutiveDays}, nil
	}
	if err == datastore.ErrUserNotFound {
		return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	// The credit is committed; everything below is best effort.
	if _, err := service.AddExperience(ctx, userID, bonus/2, "check-in diario"); err != nil {
		log.Println("check-in experience award:", err)
	}

	if err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_POINTS, userID, float64(bonus)); err != nil {
		log.Println("check-in leaderboard update:", err)
	}

	service.clearUserCaches(ctx, userID)

	return &CheckInResult{Success: true, Bonus: bonus, Streak: streak}, nil
}

func (service *ServiceGamification) GetStats(ctx context.Context, userID string) (*models.GamificationStats, error) {
	callback := func() (*models.GamificationStats, error) {
		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return nil, err
		}

		totalBadges, err := datastore.CountUserBadges(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return nil, err
		}

		return &models.GamificationStats{
			Level:                 user.Level,
			Experience:            user.Experience,
			ExperienceToNextLevel: ExperienceToNextLevel(user.Experience),
			LevelProgress:         LevelProgress(user.Experience),
			TotalBadges:           totalBadges,
			ConsecutiveDays:       user.ConsecutiveDays,
			TotalPointsEarned:     user.TotalPointsEarned,
			TotalPointsSpent:      user.TotalPointsSpent,
		}, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserStats(userID), CACHE_TTL_1_MIN, callback)
}

// GetUserBadges returns the user's badges with their catalog definitions
// attached.
func (service *ServiceGamification) GetUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	callback := func() ([]*models.UserBadge, error) {
		userBadges, err := datastore.GetUserBadges(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return nil, err
		}

		badges, err := service.GetActiveBadges(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*models.Badge, len(badges))
		for _, badge := range badges {
			byID[badge.ID] = badge
		}
		for _, ub := range userBadges {
			ub.Badge = byID[ub.BadgeID]
		}

		return userBadges, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserBadges(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceGamification) GetActiveBadges(ctx context.Context) ([]*models.Badge, error) {
	callback := func() ([]*models.Badge, error) {
		return datastore.GetActiveBadges(ctx, service.readonlyPostgresDB)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyActiveBadges(), CACHE_TTL_15_MINS, callback)
}

func (service *ServiceGamification) GetAllBadges(ctx context.Context) ([]*models.Badge, error) {
	return datastore.GetAllBadges(ctx, service.readonlyPostgresDB)
}

func (service *ServiceGamification) CreateBadge(ctx context.Context, badge *models.Badge) (*models.Badge, error) {
	created, err := datastore.InsertBadge(ctx, service.postgresDB, badge)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyActiveBadges()); err != nil {
		log.Println(err)
	}

	return created, nil
}

func (service *ServiceGamification) UpdateBadge(ctx context.Context, badge *models.Badge) (*models.Badge, error) {
	updated, err := datastore.UpdateBadge(ctx, service.postgresDB, badge)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyActiveBadges()); err != nil {
		log.Println(err)
	}

	return updated, nil
}

// SetBadgeDisplayed toggles whether one of the user's earned badges shows
// on their public profile. Toggling a badge the user does not hold is a
// no-op.
func (service *ServiceGamification) SetBadgeDisplayed(ctx context.Context, userID string, badgeID string, displayed bool) error {
	if _, err := datastore.GetBadge(ctx, service.postgresDB, badgeID); err != nil {
		return errorx.Wrap(ErrBadgeNotFound, errorx.NotExist)
	}

	if err := datastore.SetUserBadgeDisplayed(ctx, service.postgresDB, userID, badgeID, displayed); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyUserBadges(userID)); err != nil {
		log.Println(err)
	}
	if err := service.cache.Delete(ctx, DBKeyMe(userID)); err != nil {
		log.Println(err)
	}

	return nil
}

func (service *ServiceGamification) GetRecentBadgeEvents(ctx context.Context, num int) ([]*models.BadgeEvent, error) {
	return redis_store.GetRecentBadgeEvents(ctx, service.redisDB, num)
}

func (service *ServiceGamification) clearUserCaches(ctx context.Context, userID string) {
	for _, key := range []string{DBKeyUser(userID), DBKeyMe(userID), DBKeyUserBalance(userID), DBKeyUserStats(userID)} {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println(err)
		}
	}
}
