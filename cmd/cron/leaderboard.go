package main

import (
	"context"
	"log"
	"time"

	"acupuntos/internal/datastore"
	"acupuntos/internal/datastore/redis_store"
	"acupuntos/internal/models"
	"acupuntos/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type LeaderboardJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewLeaderboardJob(redis redis.UniversalClient, db *bun.DB) *LeaderboardJob {
	return &LeaderboardJob{
		Redis: redis,
		Db:    db,
	}
}

func (j *LeaderboardJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, "CRONJOB_TIME_LEADERBOARD")
	if err != nil || timeline.Value == "" {
		log.Println("No leaderboard timeline found, skipping")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.rebuild)
	log.Println("Leaderboard cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
	j.rebuild()
}

// rebuild reloads the sorted set from the lifetime totals, reconciling any
// increments lost to redis restarts.
func (j *LeaderboardJob) rebuild() {
	ctx := context.Background()
	log.Println("Start rebuilding points leaderboard ...")

	users, err := datastore.GetAllUsers(ctx, j.Db)
	if err != nil {
		log.Println(err)
		return
	}

	if err := redis_store.ClearLeaderboard(ctx, j.Redis, services.LEADERBOARD_POINTS); err != nil {
		log.Println(err)
		return
	}

	for _, user := range users {
		_, err := redis_store.SetLeaderboard(ctx, j.Redis, services.LEADERBOARD_POINTS, &models.LeaderboardItem{
			UserID: user.ID,
			Score:  float64(user.TotalPointsEarned),
		})
		if err != nil {
			log.Println(err)
		}
	}

	log.Println("Points leaderboard rebuilt:", len(users), "users")
}
