package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Transaction types. Amount is always positive, the type carries the
// direction relative to the user reading the ledger.
const (
	TransactionReceived   = "received"
	TransactionReward     = "reward"
	TransactionSent       = "sent"
	TransactionRedemption = "redemption"
)

type Transaction struct {
	bun.BaseModel `bun:"table:transaction"`
	ID            string    `bun:"id,pk" json:"id"`
	Type          string    `bun:"type" json:"type"`
	Amount        int       `bun:"amount" json:"amount"`
	FromUserID    *string   `bun:"from_user_id" json:"from_user_id"`
	ToUserID      *string   `bun:"to_user_id" json:"to_user_id"`
	Description   string    `bun:"description" json:"description"`
	RewardID      *string   `bun:"reward_id" json:"reward_id"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// IsCredit reports whether the entry increases the balance of the user it
// belongs to.
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionReceived || t.Type == TransactionReward
}

func (t *Transaction) FormattedAmount() string {
	sign := "-"
	if t.IsCredit() {
		sign = "+"
	}
	return fmt.Sprintf("%s%d pts", sign, t.Amount)
}
