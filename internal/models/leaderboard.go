package models

type LeaderboardItem struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// BadgeEvent is one entry of the badge-award activity feed kept in redis.
type BadgeEvent struct {
	UserID    string `msgpack:"user_id" json:"user_id"`
	BadgeID   string `msgpack:"badge_id" json:"badge_id"`
	BadgeName string `msgpack:"badge_name" json:"badge_name"`
	Rarity    int    `msgpack:"rarity" json:"rarity"`
	EarnedAt  int64  `msgpack:"earned_at" json:"earned_at"`
}
