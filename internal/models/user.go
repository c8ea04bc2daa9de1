package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:user"`
	ID            string  `bun:"id,pk" json:"id"`
	Email         string  `bun:"email" json:"email"`
	DisplayName   string  `bun:"display_name" json:"display_name"`
	PhotoURL      string  `bun:"photo_url" json:"photo_url"`
	Role          string  `bun:"role,default:'user'" json:"role"`
	Points        int     `bun:"points" json:"points"`
	Experience    int     `bun:"experience" json:"experience"`
	Level         int     `bun:"level,default:1" json:"level"`
	// Running totals, only ever incremented. Badge thresholds read these
	// instead of the spendable balance.
	TotalPointsEarned int        `bun:"total_points_earned" json:"total_points_earned"`
	TotalPointsSpent  int        `bun:"total_points_spent" json:"total_points_spent"`
	ConsecutiveDays   int        `bun:"consecutive_days" json:"consecutive_days"`
	LastCheckIn       *time.Time `bun:"last_check_in" json:"last_check_in"`
	FCMToken          *string    `bun:"fcm_token" json:"-"`
	CreatedAt         time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	LastLogin         time.Time  `bun:"last_login" json:"last_login"`

	IsNewUser bool         `bun:"-" json:"is_new_user"`
	Badges    []*UserBadge `bun:"-" json:"badges,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Role        string `json:"role"`
}

// GamificationStats is the read model behind the profile screen.
type GamificationStats struct {
	Level                 int     `json:"level"`
	Experience            int     `json:"experience"`
	ExperienceToNextLevel int     `json:"experience_to_next_level"`
	LevelProgress         float64 `json:"level_progress"`
	TotalBadges           int     `json:"total_badges"`
	ConsecutiveDays       int     `json:"consecutive_days"`
	TotalPointsEarned     int     `json:"total_points_earned"`
	TotalPointsSpent      int     `json:"total_points_spent"`
}
