package interfaces

import (
	"context"

	"github.com/go-redis/redis_rate/v10"
)

// Limiter throttles an operation per key. A nil return means the call may
// proceed; a rate-limited call returns an errorx.RateLimiting error.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}
