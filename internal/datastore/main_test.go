package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// newTestDB opens an in-memory sqlite database named after the test and
// creates the tables straight from the bun models. The migrate command's
// raw DDL is postgres-only, the model tags carry enough schema for these
// tests.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Transaction)(nil),
		(*models.Redemption)(nil),
		(*models.Reward)(nil),
		(*models.Badge)(nil),
		(*models.UserBadge)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	// InsertUserBadge's ON CONFLICT clause needs the unique pair index.
	_, err = db.NewCreateIndex().Model((*models.UserBadge)(nil)).
		Index("index_user_badge_unique").Unique().
		Column("user_id", "badge_id").Exec(ctx)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *bun.DB, id string, points int) {
	t.Helper()

	_, err := CreateUser(context.Background(), db, &models.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: id,
		Points:      points,
		Level:       1,
	})
	require.NoError(t, err)
}
