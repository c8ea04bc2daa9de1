package main

import (
	"context"
	"log"
	"time"

	"acupuntos/internal/datastore"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type RewardExpiryJob struct {
	Db *bun.DB
}

func NewRewardExpiryJob(db *bun.DB) *RewardExpiryJob {
	return &RewardExpiryJob{Db: db}
}

func (j *RewardExpiryJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, "CRONJOB_TIME_REWARD_EXPIRY")
	if err != nil || timeline.Value == "" {
		log.Println("No reward expiry timeline found, skipping")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.sweep)
	log.Println("Reward expiry cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
}

func (j *RewardExpiryJob) sweep() {
	ctx := context.Background()

	affected, err := datastore.DeactivateExpiredRewards(ctx, j.Db, time.Now())
	if err != nil {
		log.Println(err)
		return
	}

	if affected > 0 {
		log.Println("Deactivated expired rewards:", affected)
	}
}
