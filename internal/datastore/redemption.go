package datastore

import (
	"context"
	"database/sql"
	"time"

	"acupuntos/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableRedemption(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Redemption)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Redemption)(nil)).Index("index_redemption_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Redemption)(nil)).Index("index_redemption_status").IfNotExists().Column("status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetRedemptionByID(ctx context.Context, db bun.IDB, redemptionID string) (*models.Redemption, error) {
	var redemption models.Redemption
	err := db.NewSelect().Model(&redemption).Where("id = ?", redemptionID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func GetUserRedemptions(ctx context.Context, db *bun.DB, userID string) ([]*models.Redemption, error) {
	var redemptions []*models.Redemption
	err := db.NewSelect().Model(&redemptions).
		Where("user_id = ?", userID).
		Order("redeemed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return redemptions, nil
}

func GetRedemptionsByStatus(ctx context.Context, db *bun.DB, status string) ([]*models.Redemption, error) {
	var redemptions []*models.Redemption
	err := db.NewSelect().Model(&redemptions).
		Where("status = ?", status).
		Order("redeemed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return redemptions, nil
}

func GetAllRedemptions(ctx context.Context, db *bun.DB) ([]*models.Redemption, error) {
	var redemptions []*models.Redemption
	err := db.NewSelect().Model(&redemptions).Order("redeemed_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return redemptions, nil
}

func CountCompletedRedemptions(ctx context.Context, db bun.IDB, userID string) (int, error) {
	return db.NewSelect().Model((*models.Redemption)(nil)).
		Where("user_id = ?", userID).
		Where("status = ?", models.RedemptionCompleted).
		Count(ctx)
}

func CountUserRedemptionsForReward(ctx context.Context, db bun.IDB, userID string, rewardID string) (int, error) {
	return db.NewSelect().Model((*models.Redemption)(nil)).
		Where("user_id = ?", userID).
		Where("reward_id = ?", rewardID).
		Where("status != ?", models.RedemptionCancelled).
		Count(ctx)
}

func CountRedemptions(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Redemption)(nil)).Count(ctx)
}

// RedeemReward debits the reward's cost, snapshots it on a pending
// redemption and appends the redemption ledger entry, all in one
// transaction.
func RedeemReward(ctx context.Context, db *bun.DB, userID string, reward *models.Reward) (*models.Redemption, error) {
	now := time.Now()
	redemption := &models.Redemption{
		ID:         uuid.NewString(),
		UserID:     userID,
		RewardID:   reward.ID,
		PointsUsed: reward.PointsCost,
		Status:     models.RedemptionPending,
		RedeemedAt: now,
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := debitUserPoints(ctx, tx, userID, reward.PointsCost); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(redemption).Exec(ctx); err != nil {
			return err
		}

		record := &models.Transaction{
			ID:          uuid.NewString(),
			Type:        models.TransactionRedemption,
			Amount:      reward.PointsCost,
			FromUserID:  &userID,
			RewardID:    &reward.ID,
			Description: "Canje: " + reward.Name,
			CreatedAt:   now,
		}
		return InsertTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}

// SetRedemptionStatus moves a pending redemption to a terminal state. The
// WHERE status = pending guard makes the transition one-way; cancelling
// refunds the snapshotted points_used inside the same transaction, so the
// refund can happen at most once.
func SetRedemptionStatus(ctx context.Context, db *bun.DB, redemptionID string, status string, notes string) (*models.Redemption, error) {
	var redemption models.Redemption

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		q := tx.NewUpdate().
			Model((*models.Redemption)(nil)).
			Set("status = ?", status).
			Set("notes = ?", notes).
			Where("id = ?", redemptionID).
			Where("status = ?", models.RedemptionPending)
		if status == models.RedemptionCompleted {
			q = q.Set("completed_at = ?", now)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			_, err := GetRedemptionByID(ctx, tx, redemptionID)
			if err == sql.ErrNoRows {
				return ErrRedemptionNotFound
			}
			if err != nil {
				return err
			}
			return ErrInvalidTransition
		}

		updated, err := GetRedemptionByID(ctx, tx, redemptionID)
		if err != nil {
			return err
		}
		redemption = *updated

		if status != models.RedemptionCancelled {
			return nil
		}

		if err := creditUserPoints(ctx, tx, redemption.UserID, redemption.PointsUsed); err != nil {
			return err
		}

		record := &models.Transaction{
			ID:          uuid.NewString(),
			Type:        models.TransactionReward,
			Amount:      redemption.PointsUsed,
			ToUserID:    &redemption.UserID,
			RewardID:    &redemption.RewardID,
			Description: "Reembolso de canje cancelado",
			CreatedAt:   now,
		}
		return InsertTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	return &redemption, nil
}
