package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Badge rarity tiers, lowest to highest.
const (
	RarityCommon = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

// Badge categories with eligibility rules beyond the plain level/points
// thresholds.
const (
	BadgeCategoryGeneroso      = "generoso"
	BadgeCategoryColeccionista = "coleccionista"
	BadgeCategoryDedicado      = "dedicado"
)

type Badge struct {
	bun.BaseModel `bun:"table:badge"`
	ID            string `bun:"id,pk" json:"id"`
	Name          string `bun:"name" json:"name"`
	Description   string `bun:"description" json:"description"`
	Icon          string `bun:"icon" json:"icon"`
	Category      string `bun:"category" json:"category"`
	// Zero disables the corresponding threshold.
	RequiredPoints int       `bun:"required_points" json:"required_points"`
	RequiredLevel  int       `bun:"required_level" json:"required_level"`
	Rarity         int       `bun:"rarity" json:"rarity"`
	IsActive       bool      `bun:"is_active,default:true" json:"is_active"`
	Order          int       `bun:"display_order" json:"order"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type UserBadge struct {
	bun.BaseModel `bun:"table:user_badge"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	BadgeID       string    `bun:"badge_id" json:"badge_id"`
	EarnedAt      time.Time `bun:"earned_at,default:current_timestamp" json:"earned_at"`
	IsDisplayed   bool      `bun:"is_displayed" json:"is_displayed"`

	Badge *Badge `bun:"-" json:"badge,omitempty"`
}
