package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Reward struct {
	bun.BaseModel `bun:"table:reward"`
	ID            string     `bun:"id,pk" json:"id"`
	Name          string     `bun:"name" json:"name"`
	PointsCost    int        `bun:"points_cost" json:"points_cost"`
	Description   string     `bun:"description" json:"description"`
	IsActive      bool       `bun:"is_active,default:true" json:"is_active"`
	Icon          string     `bun:"icon" json:"icon"`
	Category      string     `bun:"category" json:"category"`
	// 0 means unlimited
	MaxRedemptionsPerUser int        `bun:"max_redemptions_per_user" json:"max_redemptions_per_user"`
	ExpiryDate            *time.Time `bun:"expiry_date" json:"expiry_date"`
	CreatedAt             time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt             time.Time  `bun:"updated_at" json:"updated_at"`
}

func (r *Reward) Expired(now time.Time) bool {
	return r.ExpiryDate != nil && now.After(*r.ExpiryDate)
}
