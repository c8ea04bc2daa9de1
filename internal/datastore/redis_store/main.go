package redis_store

import (
	"context"

	"acupuntos/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const badgeFeedMaxLen = 100

func dbKeyLeaderboard(name string) string {
	return "leaderboard:" + name
}

func dbKeyBadgeFeed() string {
	return "badges:feed"
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: v.UserID,
	}).Err()
	if err != nil {
		return nil, err
	}

	return v, nil
}

func IncrLeaderboardScore(ctx context.Context, cmd redis.Cmdable, name string, userID string, delta float64) error {
	return cmd.ZIncrBy(ctx, dbKeyLeaderboard(name), delta, userID).Err()
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := item.Member.(string)
		results = append(results, &models.LeaderboardItem{
			UserID: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

// GetRank returns the zero-based position of the user, highest score first.
func GetRank(ctx context.Context, cmd redis.Cmdable, name string, userID string) (int64, error) {
	return cmd.ZRevRank(ctx, dbKeyLeaderboard(name), userID).Result()
}

func GetLeaderboardParticipantsCount(ctx context.Context, cmd redis.Cmdable, name string) (int64, error) {
	return cmd.ZCard(ctx, dbKeyLeaderboard(name)).Result()
}

// PushBadgeEvent prepends a badge award to the capped activity feed.
func PushBadgeEvent(ctx context.Context, cmd redis.Cmdable, event *models.BadgeEvent) error {
	b, err := msgpack.Marshal(event)
	if err != nil {
		return err
	}

	pipe := cmd.Pipeline()
	pipe.LPush(ctx, dbKeyBadgeFeed(), b)
	pipe.LTrim(ctx, dbKeyBadgeFeed(), 0, badgeFeedMaxLen-1)
	_, err = pipe.Exec(ctx)
	return err
}

func GetRecentBadgeEvents(ctx context.Context, cmd redis.Cmdable, num int) ([]*models.BadgeEvent, error) {
	raw, err := cmd.LRange(ctx, dbKeyBadgeFeed(), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*models.BadgeEvent, 0, len(raw))
	for _, item := range raw {
		var event models.BadgeEvent
		if err := msgpack.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, &event)
	}

	return events, nil
}
