package services

import (
	"testing"
	"time"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLevel(t *testing.T) {
	assert.Equal(t, 1, CalculateLevel(0))
	assert.Equal(t, 1, CalculateLevel(99))
	assert.Equal(t, 2, CalculateLevel(100))
	assert.Equal(t, 2, CalculateLevel(399))
	assert.Equal(t, 3, CalculateLevel(400))
	assert.Equal(t, 4, CalculateLevel(900))
	assert.Equal(t, 1, CalculateLevel(-50))
}

func TestExperienceForLevel(t *testing.T) {
	assert.Equal(t, 0, ExperienceForLevel(0))
	assert.Equal(t, 0, ExperienceForLevel(1))
	assert.Equal(t, 100, ExperienceForLevel(2))
	assert.Equal(t, 400, ExperienceForLevel(3))
	assert.Equal(t, 8100, ExperienceForLevel(10))
}

func TestLevelRoundTrip(t *testing.T) {
	// the first experience of each level maps back to that level
	for level := 1; level <= 50; level++ {
		assert.Equal(t, level, CalculateLevel(ExperienceForLevel(level)), "level %d", level)
	}
}

func TestExperienceToNextLevel(t *testing.T) {
	assert.Equal(t, 100, ExperienceToNextLevel(0))
	assert.Equal(t, 300, ExperienceToNextLevel(100))
	assert.Equal(t, 1, ExperienceToNextLevel(399))
}

func TestLevelProgress(t *testing.T) {
	assert.InDelta(t, 0.0, LevelProgress(0), 0.001)
	assert.InDelta(t, 0.5, LevelProgress(50), 0.001)
	assert.InDelta(t, 0.0, LevelProgress(100), 0.001)
	assert.InDelta(t, 0.5, LevelProgress(250), 0.001)
}

func TestNextStreakFirstCheckIn(t *testing.T) {
	ok, streak := nextStreak(nil, 0, time.Now())
	require.True(t, ok)
	assert.Equal(t, 1, streak)
}

func TestNextStreakTooSoon(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * time.Hour)

	ok, streak := nextStreak(&last, 4, now)
	assert.False(t, ok)
	assert.Equal(t, 4, streak)
}

func TestNextStreakContinues(t *testing.T) {
	now := time.Now()
	last := now.Add(-30 * time.Hour)

	ok, streak := nextStreak(&last, 4, now)
	require.True(t, ok)
	assert.Equal(t, 5, streak)
}

func TestNextStreakBroken(t *testing.T) {
	now := time.Now()
	last := now.Add(-72 * time.Hour)

	ok, streak := nextStreak(&last, 15, now)
	require.True(t, ok)
	assert.Equal(t, 1, streak)
}

func TestCheckInBonus(t *testing.T) {
	assert.Equal(t, 15, checkInBonus(1, DEFAULT_CHECKIN_BASE_BONUS, DEFAULT_CHECKIN_STREAK_STEP, DEFAULT_CHECKIN_MAX_STREAK))
	assert.Equal(t, 45, checkInBonus(7, DEFAULT_CHECKIN_BASE_BONUS, DEFAULT_CHECKIN_STREAK_STEP, DEFAULT_CHECKIN_MAX_STREAK))
	// streak bonus caps out at the configured maximum
	assert.Equal(t, 110, checkInBonus(30, DEFAULT_CHECKIN_BASE_BONUS, DEFAULT_CHECKIN_STREAK_STEP, DEFAULT_CHECKIN_MAX_STREAK))
	assert.Equal(t, 110, checkInBonus(365, DEFAULT_CHECKIN_BASE_BONUS, DEFAULT_CHECKIN_STREAK_STEP, DEFAULT_CHECKIN_MAX_STREAK))
}

func TestBadgeEligibleThresholds(t *testing.T) {
	user := &models.User{Level: 3, TotalPointsEarned: 500}

	assert.True(t, badgeEligible(&models.Badge{RequiredPoints: 100}, user, 0, 0))
	assert.False(t, badgeEligible(&models.Badge{RequiredPoints: 1000}, user, 0, 0))
	assert.True(t, badgeEligible(&models.Badge{RequiredLevel: 3}, user, 0, 0))
	assert.False(t, badgeEligible(&models.Badge{RequiredLevel: 4}, user, 0, 0))
	assert.False(t, badgeEligible(&models.Badge{RequiredLevel: 2, RequiredPoints: 1000}, user, 0, 0))
}

func TestBadgeEligibleGeneroso(t *testing.T) {
	user := &models.User{Level: 5, TotalPointsEarned: 1000}
	badge := &models.Badge{Category: models.BadgeCategoryGeneroso, RequiredPoints: 100}

	// needs requiredPoints/10 sent transfers on top of the points threshold
	assert.False(t, badgeEligible(badge, user, 9, 0))
	assert.True(t, badgeEligible(badge, user, 10, 0))

	// enough transfers alone does not earn it, the points gate still applies
	assert.False(t, badgeEligible(badge, &models.User{Level: 5, TotalPointsEarned: 0}, 10, 0))
	assert.False(t, badgeEligible(badge, &models.User{Level: 5, TotalPointsEarned: 99}, 10, 0))
}

func TestBadgeEligibleColeccionista(t *testing.T) {
	user := &models.User{Level: 5, TotalPointsEarned: 1000}
	badge := &models.Badge{Category: models.BadgeCategoryColeccionista, RequiredPoints: 100}

	assert.False(t, badgeEligible(badge, user, 0, 1))
	assert.True(t, badgeEligible(badge, user, 0, 2))
}

func TestBadgeEligibleDedicado(t *testing.T) {
	badge := &models.Badge{Category: models.BadgeCategoryDedicado, RequiredLevel: 7}

	// required_level doubles as the streak threshold, but the level gate
	// still applies: a week-long streak at level 1 is not enough
	assert.False(t, badgeEligible(badge, &models.User{Level: 1, ConsecutiveDays: 7}, 0, 0))
	assert.False(t, badgeEligible(badge, &models.User{Level: 7, ConsecutiveDays: 6}, 0, 0))
	assert.True(t, badgeEligible(badge, &models.User{Level: 7, ConsecutiveDays: 7}, 0, 0))
}
