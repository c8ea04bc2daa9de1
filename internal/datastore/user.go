package datastore

import (
	"context"
	"database/sql"
	"strings"

	"acupuntos/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_email").IfNotExists().Column("email").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_role").IfNotExists().Column("role").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewRaw(`
		alter table "user"
			add if not exists total_points_earned int default 0;
		alter table "user"
			add if not exists total_points_spent int default 0;
		alter table "user"
			add if not exists consecutive_days int default 0;
		alter table "user"
			add if not exists last_check_in timestamptz;`).Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db bun.IDB, userID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CheckUserExists(ctx context.Context, db bun.IDB, userID string) (bool, error) {
	return db.NewSelect().Model((*models.User)(nil)).Where("id = ?", userID).Exists(ctx)
}

func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func GetAllUsers(ctx context.Context, db *bun.DB) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("display_name ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func SearchUsers(ctx context.Context, db *bun.DB, term string, limit int) ([]*models.User, error) {
	var users []*models.User
	pattern := "%" + strings.ToLower(term) + "%"
	err := db.NewSelect().Model(&users).
		Where("lower(display_name) LIKE ?", pattern).
		WhereOr("lower(email) LIKE ?", pattern).
		Order("display_name ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func UpdateUserProfile(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewUpdate().Model(user).
		Set("display_name = ?", user.DisplayName).
		Set("photo_url = ?", user.PhotoURL).
		Set("last_login = ?", user.LastLogin).
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func CountUsers(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.User)(nil)).Count(ctx)
}

func SumUserPoints(ctx context.Context, db *bun.DB) (int, error) {
	var total int
	err := db.NewSelect().Model((*models.User)(nil)).ColumnExpr("coalesce(sum(points), 0)").Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// AddUserExperience increments cumulative experience atomically and stores
// the level derived from the new total. levelFor must be the pure level
// formula; recomputing it from the returned total is idempotent, so
// concurrent awards cannot leave level out of step for long.
func AddUserExperience(ctx context.Context, db *bun.DB, userID string, amount int, levelFor func(experience int) int) (int, int, error) {
	var newExperience, newLevel int

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("experience = experience + ?", amount).
			Where("id = ?", userID).
			Returning("experience").
			Exec(ctx, &newExperience)
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		newLevel = levelFor(newExperience)
		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("level = ?", newLevel).
			Where("id = ?", userID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, 0, err
	}

	return newExperience, newLevel, nil
}

func GetTopUsersByPoints(ctx context.Context, db *bun.DB, limit int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("total_points_earned DESC").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}
