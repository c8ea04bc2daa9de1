package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"acupuntos/internal/datastore"
	"acupuntos/internal/models"
	"acupuntos/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSeedRewards(),
			commandSeedBadges(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableTransaction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableReward(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableRedemption(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableBadge(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserBadge(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_SERVER_MODE, Value: "production"},
				{Key: services.CONFIG_WELCOME_BONUS, Value: "100"},
				{Key: services.CONFIG_CHECKIN_BASE_BONUS, Value: "10"},
				{Key: services.CONFIG_CHECKIN_STREAK_STEP, Value: "5"},
				{Key: services.CONFIG_CHECKIN_MAX_STREAK, Value: "100"},
				{Key: services.CONFIG_TRANSACTION_PAGE_SIZE, Value: "50"},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: "20"},
				{Key: "CRONJOB_TIME_LEADERBOARD", Value: "@every 1h"},
				{Key: "CRONJOB_TIME_REWARD_EXPIRY", Value: "@every 30m"},
			}

			for _, config := range configs {
				_, err = db.NewInsert().Model(&config).Exec(ctx)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func commandSeedRewards() *cli.Command {
	return &cli.Command{
		Name:        "seed-rewards",
		Description: "Insert the starter reward catalog",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			now := time.Now()
			rewards := []*models.Reward{
				{ID: "cafe-gratis", Name: "Café gratis", PointsCost: 50, Description: "Un café de la máquina por cuenta de la casa", Icon: "☕", Category: "comida", IsActive: true, CreatedAt: now, UpdatedAt: now},
				{ID: "almuerzo-gratis", Name: "Almuerzo gratis", PointsCost: 200, Description: "Almuerzo en el casino de la empresa", Icon: "🍽️", Category: "comida", IsActive: true, CreatedAt: now, UpdatedAt: now},
				{ID: "dia-libre", Name: "Día libre", PointsCost: 1000, Description: "Un día libre adicional, sujeto a aprobación", Icon: "🏖️", Category: "tiempo", IsActive: true, MaxRedemptionsPerUser: 2, CreatedAt: now, UpdatedAt: now},
				{ID: "salida-temprano", Name: "Salida temprano", PointsCost: 300, Description: "Salir dos horas antes un viernes", Icon: "🕑", Category: "tiempo", IsActive: true, CreatedAt: now, UpdatedAt: now},
				{ID: "gift-card", Name: "Gift card", PointsCost: 500, Description: "Gift card de $20.000", Icon: "🎁", Category: "premios", IsActive: true, MaxRedemptionsPerUser: 1, CreatedAt: now, UpdatedAt: now},
			}

			for _, reward := range rewards {
				if _, err := datastore.InsertReward(ctx, db, reward); err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func commandSeedBadges() *cli.Command {
	return &cli.Command{
		Name:        "seed-badges",
		Description: "Insert the badge catalog",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			now := time.Now()
			badges := []*models.Badge{
				{ID: "primeros-pasos", Name: "Primeros pasos", Description: "Gana tus primeros 100 puntos", Icon: "🌱", RequiredPoints: 100, Rarity: models.RarityCommon, IsActive: true, Order: 1, CreatedAt: now},
				{ID: "acumulador", Name: "Acumulador", Description: "Gana 1000 puntos en total", Icon: "💰", RequiredPoints: 1000, Rarity: models.RarityRare, IsActive: true, Order: 2, CreatedAt: now},
				{ID: "magnate", Name: "Magnate", Description: "Gana 5000 puntos en total", Icon: "👑", RequiredPoints: 5000, Rarity: models.RarityEpic, IsActive: true, Order: 3, CreatedAt: now},
				{ID: "generoso-1", Name: "Mano abierta", Description: "Envía 10 transferencias", Icon: "🤝", Category: models.BadgeCategoryGeneroso, RequiredPoints: 100, Rarity: models.RarityCommon, IsActive: true, Order: 4, CreatedAt: now},
				{ID: "generoso-2", Name: "Filántropo", Description: "Envía 50 transferencias", Icon: "💝", Category: models.BadgeCategoryGeneroso, RequiredPoints: 500, Rarity: models.RarityEpic, IsActive: true, Order: 5, CreatedAt: now},
				{ID: "coleccionista-1", Name: "Coleccionista", Description: "Completa 2 canjes", Icon: "🧺", Category: models.BadgeCategoryColeccionista, RequiredPoints: 100, Rarity: models.RarityRare, IsActive: true, Order: 6, CreatedAt: now},
				{ID: "dedicado-1", Name: "Constante", Description: "Racha de 7 días seguidos", Icon: "🔥", Category: models.BadgeCategoryDedicado, RequiredLevel: 7, Rarity: models.RarityRare, IsActive: true, Order: 7, CreatedAt: now},
				{ID: "dedicado-2", Name: "Imparable", Description: "Racha de 30 días seguidos", Icon: "⚡", Category: models.BadgeCategoryDedicado, RequiredLevel: 30, Rarity: models.RarityLegendary, IsActive: true, Order: 8, CreatedAt: now},
				{ID: "veterano", Name: "Veterano", Description: "Alcanza el nivel 10", Icon: "🎖️", RequiredLevel: 10, Rarity: models.RarityEpic, IsActive: true, Order: 9, CreatedAt: now},
			}

			for _, badge := range badges {
				if _, err := datastore.InsertBadge(ctx, db, badge); err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
