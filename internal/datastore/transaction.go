package datastore

import (
	"context"

	"acupuntos/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Transaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Transaction)(nil)).Index("index_transaction_from_user").IfNotExists().Column("from_user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Transaction)(nil)).Index("index_transaction_to_user").IfNotExists().Column("to_user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Transaction)(nil)).Index("index_transaction_created_at").IfNotExists().Column("created_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertTransaction(ctx context.Context, db bun.IDB, transaction *models.Transaction) error {
	_, err := db.NewInsert().Model(transaction).Exec(ctx)
	return err
}

// GetUserTransactions lists ledger entries where the user is sender or
// receiver, newest first. A transfer produces a sent and a received row
// with distinct ids, so no dedup is needed here.
func GetUserTransactions(ctx context.Context, db *bun.DB, userID string, limit int) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	err := db.NewSelect().Model(&transactions).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("from_user_id = ?", userID).WhereOr("to_user_id = ?", userID)
		}).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func CountSentTransactions(ctx context.Context, db bun.IDB, userID string) (int, error) {
	return db.NewSelect().Model((*models.Transaction)(nil)).
		Where("from_user_id = ?", userID).
		Where("type = ?", models.TransactionSent).
		Count(ctx)
}

func CountTransactions(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Transaction)(nil)).Count(ctx)
}
