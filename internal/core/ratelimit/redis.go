package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Redis 多实例共享计数：INCR + EXPIRE 放在同一个事务管道里。
// Client 可以是单机、集群或哨兵客户端。
type Redis struct {
	Client redis.Cmdable
	Prefix string
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewRedis(client redis.Cmdable, prefix string, max int, window time.Duration) *Redis {
	if prefix == "" {
		prefix = "rl:"
	}
	return &Redis{Client: client, Prefix: prefix, Max: int64(max), Window: window, Now: time.Now}
}

func (l *Redis) Allow(ctx context.Context, key string) (Result, error) {
	start := windowStart(l.Now(), l.Window)
	k := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit incr: %w", err)
	}
	retry := start.Add(l.Window).Sub(l.Now())
	return result(incr.Val(), l.Max, retry), nil
}
