package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRewardExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, (&Reward{}).Expired(now), "no expiry date never expires")

	future := now.Add(time.Hour)
	assert.False(t, (&Reward{ExpiryDate: &future}).Expired(now))

	past := now.Add(-time.Hour)
	assert.True(t, (&Reward{ExpiryDate: &past}).Expired(now))
}

func TestValidRedemptionStatus(t *testing.T) {
	assert.True(t, ValidRedemptionStatus(RedemptionPending))
	assert.True(t, ValidRedemptionStatus(RedemptionCompleted))
	assert.True(t, ValidRedemptionStatus(RedemptionCancelled))
	assert.False(t, ValidRedemptionStatus("refunded"))
	assert.False(t, ValidRedemptionStatus(""))
}
