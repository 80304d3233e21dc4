// Package ratelimit implements the sliding-window attempt limiter used on login.
package ratelimit

import (
	"context"
	"time"
)

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 0 если разрешено
	ResetAt    time.Time
}

// Limiter: increment-and-check(key) по скользящему окну.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	return c
}
