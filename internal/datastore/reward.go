package datastore

import (
	"context"
	"time"

	"acupuntos/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableReward(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Reward)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Reward)(nil)).Index("index_reward_is_active").IfNotExists().Column("is_active").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetReward(ctx context.Context, db bun.IDB, rewardID string) (*models.Reward, error) {
	var reward models.Reward
	err := db.NewSelect().Model(&reward).Where("id = ?", rewardID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func GetActiveRewards(ctx context.Context, db *bun.DB) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := db.NewSelect().Model(&rewards).
		Where("is_active = true").
		Order("points_cost ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func GetAllRewards(ctx context.Context, db *bun.DB) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := db.NewSelect().Model(&rewards).Order("points_cost ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func InsertReward(ctx context.Context, db *bun.DB, reward *models.Reward) (*models.Reward, error) {
	_, err := db.NewInsert().Model(reward).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return reward, nil
}

func UpdateReward(ctx context.Context, db *bun.DB, reward *models.Reward) (*models.Reward, error) {
	reward.UpdatedAt = time.Now()
	_, err := db.NewUpdate().Model(reward).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return reward, nil
}

func DeleteReward(ctx context.Context, db *bun.DB, rewardID string) error {
	_, err := db.NewDelete().Model((*models.Reward)(nil)).Where("id = ?", rewardID).Exec(ctx)
	return err
}

func CountActiveRewards(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Reward)(nil)).Where("is_active = true").Count(ctx)
}

// DeactivateExpiredRewards flips is_active off for rewards past their
// expiry. Redeem checks expiry at read time as well, the sweep just keeps
// catalog listings clean.
func DeactivateExpiredRewards(ctx context.Context, db *bun.DB, now time.Time) (int64, error) {
	res, err := db.NewUpdate().
		Model((*models.Reward)(nil)).
		Set("is_active = false").
		Set("updated_at = ?", now).
		Where("is_active = true").
		Where("expiry_date IS NOT NULL").
		Where("expiry_date < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
