// Package ratelimit 固定窗口计数限流，用于登录/注册防爆破。
package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// windowStart 当前窗口起点，同一窗口内的请求共用一个计数 key
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.UTC().Truncate(window)
}

func result(hits, max int64, retry time.Duration) Result {
	r := Result{Allowed: hits <= max, Remaining: max - hits}
	if r.Remaining < 0 {
		r.Remaining = 0
	}
	if !r.Allowed {
		r.RetryAfter = retry
	}
	return r
}
