package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// OnceGuard claims keys with SET NX so a side effect runs once per key
// across processes.
type OnceGuard struct {
	rdb    *redis.Client
	prefix string
}

func NewOnceGuard(rdb *redis.Client, prefix string) *OnceGuard {
	return &OnceGuard{rdb: rdb, prefix: prefix}
}

// Claim reports true the first time key is seen within ttl.
func (g *OnceGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.rdb.SetNX(ctx, g.prefix+key, "1", ttl).Result()
}

// Release drops a claim so a failed side effect can be retried.
func (g *OnceGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, g.prefix+key).Err()
}
