package datastore

import (
	"context"
	"testing"
	"time"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBadge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := InsertBadge(ctx, db, &models.Badge{ID: "constante", Name: "Constante", IsActive: true})
	require.NoError(t, err)

	badge, err := GetBadge(ctx, db, "constante")
	require.NoError(t, err)
	assert.Equal(t, "Constante", badge.Name)

	_, err = GetBadge(ctx, db, "no-existe")
	assert.Error(t, err)
}

func TestInsertUserBadgeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 0)

	inserted, err := InsertUserBadge(ctx, db, &models.UserBadge{UserID: "ana", BadgeID: "constante", EarnedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = InsertUserBadge(ctx, db, &models.UserBadge{UserID: "ana", BadgeID: "constante", EarnedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := CountUserBadges(ctx, db, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSetUserBadgeDisplayed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "ana", 0)

	_, err := InsertBadge(ctx, db, &models.Badge{ID: "constante", Name: "Constante", IsActive: true})
	require.NoError(t, err)

	inserted, err := InsertUserBadge(ctx, db, &models.UserBadge{UserID: "ana", BadgeID: "constante", EarnedAt: time.Now()})
	require.NoError(t, err)
	require.True(t, inserted)

	require.NoError(t, SetUserBadgeDisplayed(ctx, db, "ana", "constante", true))

	userBadges, err := GetUserBadges(ctx, db, "ana")
	require.NoError(t, err)
	require.Len(t, userBadges, 1)
	assert.True(t, userBadges[0].IsDisplayed)

	require.NoError(t, SetUserBadgeDisplayed(ctx, db, "ana", "constante", false))

	userBadges, err = GetUserBadges(ctx, db, "ana")
	require.NoError(t, err)
	require.Len(t, userBadges, 1)
	assert.False(t, userBadges[0].IsDisplayed)
}
