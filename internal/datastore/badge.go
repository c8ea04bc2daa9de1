package datastore

import (
	"context"

	"acupuntos/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableBadge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Badge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Badge)(nil)).Index("index_badge_is_active").IfNotExists().Column("is_active").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableUserBadge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserBadge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// Awarding relies on this to stay idempotent.
	_, err = db.NewCreateIndex().Model((*models.UserBadge)(nil)).
		Index("index_user_badge_unique").Unique().IfNotExists().
		Column("user_id", "badge_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetActiveBadges(ctx context.Context, db bun.IDB) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := db.NewSelect().Model(&badges).
		Where("is_active = true").
		Order("display_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return badges, nil
}

func GetAllBadges(ctx context.Context, db *bun.DB) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := db.NewSelect().Model(&badges).Order("display_order ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return badges, nil
}

func GetBadge(ctx context.Context, db *bun.DB, badgeID string) (*models.Badge, error) {
	var badge models.Badge
	err := db.NewSelect().Model(&badge).Where("id = ?", badgeID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func InsertBadge(ctx context.Context, db *bun.DB, badge *models.Badge) (*models.Badge, error) {
	_, err := db.NewInsert().Model(badge).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return badge, nil
}

func UpdateBadge(ctx context.Context, db *bun.DB, badge *models.Badge) (*models.Badge, error) {
	_, err := db.NewUpdate().Model(badge).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return badge, nil
}

func GetUserBadges(ctx context.Context, db bun.IDB, userID string) ([]*models.UserBadge, error) {
	var userBadges []*models.UserBadge
	err := db.NewSelect().Model(&userBadges).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return userBadges, nil
}

// InsertUserBadge awards a badge at most once per (user, badge) pair. It
// reports whether a new row was written.
func InsertUserBadge(ctx context.Context, db bun.IDB, userBadge *models.UserBadge) (bool, error) {
	res, err := db.NewInsert().Model(userBadge).
		On("CONFLICT (user_id, badge_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func SetUserBadgeDisplayed(ctx context.Context, db *bun.DB, userID string, badgeID string, displayed bool) error {
	_, err := db.NewUpdate().
		Model((*models.UserBadge)(nil)).
		Set("is_displayed = ?", displayed).
		Where("user_id = ?", userID).
		Where("badge_id = ?", badgeID).
		Exec(ctx)
	return err
}

func CountUserBadges(ctx context.Context, db bun.IDB, userID string) (int, error) {
	return db.NewSelect().Model((*models.UserBadge)(nil)).Where("user_id = ?", userID).Count(ctx)
}
