package ratelimit

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory 单实例计数，未配置 redis 时使用
type Memory struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewMemory(max int, window time.Duration) *Memory {
	return &Memory{
		c:      gocache.New(window, time.Minute),
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
	}
}

func (l *Memory) Allow(_ context.Context, key string) (Result, error) {
	start := windowStart(l.Now(), l.Window)
	k := fmt.Sprintf("%s:%d", key, start.Unix())

	// Add 只在 key 不存在时成功，随后 IncrementInt64 原子累加
	_ = l.c.Add(k, int64(0), l.Window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit incr: %w", err)
	}
	return result(hits, l.Max, start.Add(l.Window).Sub(l.Now())), nil
}
