package datastore

import (
	"context"
	"testing"
	"time"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferPointsMovesBothBalances(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 100)
	seedUser(t, db, "ben", 50)

	result, err := TransferPoints(ctx, db, "ana", "ben", 30, "por ayudarme ayer")
	require.NoError(t, err)
	assert.Equal(t, 70, result.FromUserPoints)
	assert.Equal(t, 80, result.ToUserPoints)

	// a transfer never mints or burns points
	total, err := SumUserPoints(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 150, total)
}

func TestTransferPointsWritesMirroredRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 100)
	seedUser(t, db, "ben", 50)

	_, err := TransferPoints(ctx, db, "ana", "ben", 30, "por ayudarme ayer")
	require.NoError(t, err)

	var transactions []*models.Transaction
	err = db.NewSelect().Model(&transactions).Order("type ASC").Scan(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	received, sent := transactions[0], transactions[1]
	assert.Equal(t, models.TransactionReceived, received.Type)
	assert.Equal(t, models.TransactionSent, sent.Type)
	assert.NotEqual(t, sent.ID, received.ID)
	assert.True(t, sent.CreatedAt.Equal(received.CreatedAt))

	for _, record := range transactions {
		assert.Equal(t, 30, record.Amount)
		require.NotNil(t, record.FromUserID)
		require.NotNil(t, record.ToUserID)
		assert.Equal(t, "ana", *record.FromUserID)
		assert.Equal(t, "ben", *record.ToUserID)
	}
}

func TestTransferPointsInsufficientLeavesBalancesUntouched(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 100)
	seedUser(t, db, "ben", 50)

	result, err := TransferPoints(ctx, db, "ana", "ben", 150, "demasiado")
	require.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Nil(t, result)

	fromPoints, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 100, fromPoints)

	toPoints, err := GetUserPoints(ctx, db, "ben")
	require.NoError(t, err)
	assert.Equal(t, 50, toPoints)

	count, err := CountTransactions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTransferPointsUnknownRecipientRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 100)

	_, err := TransferPoints(ctx, db, "ana", "nadie", 30, "")
	require.ErrorIs(t, err, ErrUserNotFound)

	// the debit must roll back with the failed credit
	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 100, points)

	count, err := CountTransactions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAssignPointsCreditsWithLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 0)

	record, err := AssignPoints(ctx, db, "ana", 100, "Bono de bienvenida")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionReward, record.Type)
	assert.Equal(t, 100, record.Amount)

	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 100, points)

	user, err := FindUserByID(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 100, user.TotalPointsEarned)
}

func TestCheckInUpdateGuardBlocksSecondCredit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 0)

	now := time.Now()
	windowStart := now.Add(-20 * time.Hour)
	require.NoError(t, CheckInUpdate(ctx, db, "ana", 15, 1, now, windowStart, "Check-in diario (Racha: 1 días)"))

	err := CheckInUpdate(ctx, db, "ana", 15, 2, now, windowStart, "Check-in diario (Racha: 2 días)")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	points, err := GetUserPoints(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 15, points)

	user, err := FindUserByID(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ConsecutiveDays)
}
