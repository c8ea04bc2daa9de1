package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Redemption lifecycle. Pending is the only state that allows a transition;
// Completed and Cancelled are terminal.
const (
	RedemptionPending   = "pending"
	RedemptionCompleted = "completed"
	RedemptionCancelled = "cancelled"
)

type Redemption struct {
	bun.BaseModel `bun:"table:redemption"`
	ID            string     `bun:"id,pk" json:"id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	RewardID      string     `bun:"reward_id" json:"reward_id"`
	// Price snapshot taken when the redemption was created. Refunds use this
	// value, not the reward's current cost.
	PointsUsed  int        `bun:"points_used" json:"points_used"`
	Status      string     `bun:"status,default:'pending'" json:"status"`
	RedeemedAt  time.Time  `bun:"redeemed_at,default:current_timestamp" json:"redeemed_at"`
	CompletedAt *time.Time `bun:"completed_at" json:"completed_at"`
	Notes       string     `bun:"notes" json:"notes"`

	Reward *Reward `bun:"-" json:"reward,omitempty"`
}

func ValidRedemptionStatus(status string) bool {
	switch status {
	case RedemptionPending, RedemptionCompleted, RedemptionCancelled:
		return true
	}
	return false
}
