package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis 只实现 TxPipeline；其余方法调用会 panic
type fakeRedis struct {
	redis.Cmdable
	counts  map[string]int64
	expires map[string]time.Duration
	execErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) TxPipeline() redis.Pipeliner { return &fakePipe{db: f} }

type fakePipe struct {
	redis.Pipeliner
	db      *fakeRedis
	incrs   []*redis.IntCmd
	expires []*redis.BoolCmd
	ttls    []time.Duration
}

func (p *fakePipe) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	p.incrs = append(p.incrs, cmd)
	return cmd
}

func (p *fakePipe) ExpireNX(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "expire", key, int64(ttl/time.Second), "nx")
	p.expires = append(p.expires, cmd)
	p.ttls = append(p.ttls, ttl)
	return cmd
}

func (p *fakePipe) Exec(context.Context) ([]redis.Cmder, error) {
	if p.db.execErr != nil {
		return nil, p.db.execErr
	}
	var out []redis.Cmder
	for _, c := range p.incrs {
		key := c.Args()[1].(string)
		p.db.counts[key]++
		c.SetVal(p.db.counts[key])
		out = append(out, c)
	}
	for i, c := range p.expires {
		key := c.Args()[1].(string)
		_, had := p.db.expires[key]
		if !had {
			p.db.expires[key] = p.ttls[i]
		}
		c.SetVal(!had)
		out = append(out, c)
	}
	return out, nil
}

func TestRedis_FixedWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)
	db := newFakeRedis()
	l := NewRedis(db, "perfume:login:", 2, time.Minute)
	l.Now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		r, err := l.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, r.Allowed)
		assert.Equal(t, int64(1-i), r.Remaining)
	}
	r, err := l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, r.Allowed)
	assert.Equal(t, 50*time.Second, r.RetryAfter)

	// key 带窗口起点，过期时间只在首次写入时设置
	const key = "perfume:login:login:1.2.3.4:1714564800"
	assert.Equal(t, int64(3), db.counts[key])
	assert.Equal(t, time.Minute, db.expires[key])
	assert.Len(t, db.counts, 1)

	// 下一个窗口换新 key
	now = now.Add(time.Minute)
	r, err = l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
	assert.Equal(t, int64(1), db.counts["perfume:login:login:1.2.3.4:1714564860"])
}

func TestRedis_KeysAndErrors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)
	db := newFakeRedis()
	l := NewRedis(db, "", 5, time.Minute)
	l.Now = func() time.Time { return now }
	ctx := context.Background()

	_, err := l.Allow(ctx, "register:jane doe")
	require.NoError(t, err)
	assert.Contains(t, db.counts, "rl:register:jane_doe:1714564800")

	db.execErr = errors.New("connection refused")
	_, err = l.Allow(ctx, "register:jane doe")
	require.Error(t, err)
	assert.ErrorIs(t, err, db.execErr)
	assert.Contains(t, err.Error(), "ratelimit incr")
}
