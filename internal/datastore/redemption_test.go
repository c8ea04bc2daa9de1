package datastore

import (
	"context"
	"testing"
	"time"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func seedReward(t *testing.T, db *bun.DB, id string, cost int) *models.Reward {
	t.Helper()

	now := time.Now()
	reward := &models.Reward{
		ID:         id,
		Name:       "Sesión de masaje",
		PointsCost: cost,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := db.NewInsert().Model(reward).Exec(context.Background())
	require.NoError(t, err)

	return reward
}

func TestRedeemRewardDebitsAndSnapshotsCost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 500)
	reward := seedReward(t, db, "masaje", 200)

	redemption, err := RedeemReward(ctx, db, "ana", reward)
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionPending, redemption.Status)
	assert.Equal(t, 200, redemption.PointsUsed)

	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 300, points)

	var transactions []*models.Transaction
	err = db.NewSelect().Model(&transactions).Scan(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionRedemption, transactions[0].Type)
	assert.Equal(t, 200, transactions[0].Amount)
}

func TestRedeemRewardInsufficientLeavesBalanceUntouched(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 100)
	reward := seedReward(t, db, "masaje", 200)

	_, err := RedeemReward(ctx, db, "ana", reward)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 100, points)

	count, err := CountRedemptions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCancelRefundsSnapshotAfterPriceChange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 500)
	reward := seedReward(t, db, "masaje", 200)

	redemption, err := RedeemReward(ctx, db, "ana", reward)
	require.NoError(t, err)

	// the price changes while the redemption sits pending; the refund must
	// pay out the snapshot, not the new cost
	_, err = db.NewUpdate().Model((*models.Reward)(nil)).
		Set("points_cost = ?", 999).
		Where("id = ?", reward.ID).
		Exec(ctx)
	require.NoError(t, err)

	cancelled, err := SetRedemptionStatus(ctx, db, redemption.ID, models.RedemptionCancelled, "sin disponibilidad")
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionCancelled, cancelled.Status)

	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 500, points)

	var refunds []*models.Transaction
	err = db.NewSelect().Model(&refunds).Where("type = ?", models.TransactionReward).Scan(ctx)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, 200, refunds[0].Amount)
}

func TestSetRedemptionStatusIsOneWay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 500)
	reward := seedReward(t, db, "masaje", 200)

	redemption, err := RedeemReward(ctx, db, "ana", reward)
	require.NoError(t, err)

	completed, err := SetRedemptionStatus(ctx, db, redemption.ID, models.RedemptionCompleted, "entregado")
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// a completed redemption cannot be cancelled into a refund
	_, err = SetRedemptionStatus(ctx, db, redemption.ID, models.RedemptionCancelled, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 300, points)
}

func TestSetRedemptionStatusUnknownID(t *testing.T) {
	db := newTestDB(t)

	_, err := SetRedemptionStatus(context.Background(), db, "no-existe", models.RedemptionCompleted, "")
	require.ErrorIs(t, err, ErrRedemptionNotFound)
}
