package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain errors. Handlers receive them wrapped with their errorx group, the
// message is what the app shows to the user.
var (
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrRewardNotFound     = errors.New("recompensa no encontrada")
	ErrBadgeNotFound      = errors.New("insignia no encontrada")
	ErrRedemptionNotFound = errors.New("canje no encontrado")
	ErrInsufficientPoints = errors.New("no tienes puntos suficientes")
	ErrInvalidAmount      = errors.New("la cantidad debe ser mayor que cero")
	ErrSelfTransfer       = errors.New("no puedes transferirte puntos a ti mismo")
	ErrRewardInactive     = errors.New("la recompensa no está disponible")
	ErrRewardExpired      = errors.New("la recompensa ha expirado")
	ErrRedemptionLimit    = errors.New("ya alcanzaste el límite de canjes de esta recompensa")
	ErrInvalidTransition  = errors.New("el canje ya fue procesado")
	ErrAlreadyCheckedIn   = errors.New("ya hiciste check-in hoy")
	ErrCheckInLock        = errors.New("check-in in progress")
	ErrTransferLock       = errors.New("transfer in progress")
	ErrRedeemLock         = errors.New("redemption in progress")
	ErrNotAdmin           = errors.New("no tienes permisos para esta operación")
)

const (
	CONFIG_SERVER_MODE           = "SERVER_MODE"
	CONFIG_WELCOME_BONUS         = "WELCOME_BONUS"
	CONFIG_CHECKIN_BASE_BONUS    = "CHECKIN_BASE_BONUS"
	CONFIG_CHECKIN_STREAK_STEP   = "CHECKIN_STREAK_STEP"
	CONFIG_CHECKIN_MAX_STREAK    = "CHECKIN_MAX_STREAK_BONUS"
	CONFIG_TRANSACTION_PAGE_SIZE = "TRANSACTION_PAGE_SIZE"
	CONFIG_LEADERBOARD_LIMIT     = "LEADERBOARD_LIMIT"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	LEADERBOARD_POINTS = "points"

	DEFAULT_WELCOME_BONUS       = 100
	DEFAULT_CHECKIN_BASE_BONUS  = 10
	DEFAULT_CHECKIN_STREAK_STEP = 5
	DEFAULT_CHECKIN_MAX_STREAK  = 100
	DEFAULT_TRANSACTION_LIMIT   = 50
	DEFAULT_LEADERBOARD_LIMIT   = 20

	// Check-in window bounds. Below the floor a second check-in is
	// rejected, above the ceiling the streak is considered broken.
	CHECKIN_MIN_INTERVAL   = 20 * time.Hour
	CHECKIN_BREAK_INTERVAL = 48 * time.Hour

	// Experience awards as fractions of the points moved.
	XP_TRANSFER_DIVISOR   = 20 // 5% of transferred amount
	XP_REDEMPTION_DIVISOR = 10 // 10% of redeemed cost

	CHECKIN_RATE_LIMIT_PER_MINUTE  = 10
	TRANSFER_RATE_LIMIT_PER_MINUTE = 30

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
	CACHE_TTL_15_MINS   = 15 * time.Minute
	CACHE_TTL_1_HOUR    = 1 * time.Hour
	CACHE_TTL_1_DAY     = 24 * time.Hour
)

func LockKeyUserCheckIn(userID string) string {
	return fmt.Sprintf("lock:user-checkin:%s", userID)
}

func LockKeyUserTransfer(userID string) string {
	return fmt.Sprintf("lock:user-transfer:%s", userID)
}

func LockKeyUserRedeem(userID string) string {
	return fmt.Sprintf("lock:user-redeem:%s", userID)
}

// db
func DBKeyUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func DBKeyMe(userID string) string {
	return fmt.Sprintf("me:%s", userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyUserBalance(userID string) string {
	return fmt.Sprintf("user:%s:balance", userID)
}

// One key per user regardless of the requested page size: the cached list
// always holds the newest DEFAULT_TRANSACTION_LIMIT entries and smaller
// pages slice from it, so a single delete invalidates every page.
func DBKeyUserTransactions(userID string) string {
	return fmt.Sprintf("user:%s:transactions", userID)
}

func DBKeyUserBadges(userID string) string {
	return fmt.Sprintf("user:%s:badges", userID)
}

func DBKeyUserStats(userID string) string {
	return fmt.Sprintf("user:%s:stats", userID)
}

func DBKeyUserRedemptions(userID string) string {
	return fmt.Sprintf("user:%s:redemptions", userID)
}

func DBKeyActiveRewards() string {
	return "rewards:active"
}

func DBKeyActiveBadges() string {
	return "badges:active"
}

func DBKeyLeaderboardTop(name string, limit int) string {
	return fmt.Sprintf("leaderboard_top:%s:%d", strings.ToLower(name), limit)
}

func LimitKeyCheckIn(userID string) string {
	return fmt.Sprintf("limit:checkin:%s", userID)
}

func LimitKeyTransfer(userID string) string {
	return fmt.Sprintf("limit:transfer:%s", userID)
}
