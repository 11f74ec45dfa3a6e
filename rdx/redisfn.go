package rdx

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conn stays nil when Redis is not configured; callers treat that as a cache
// miss / local-only broadcast.
var Conn *redis.Client

// Connect dials Redis when REDIS_ADDR is set. Returns false when Redis is
// not configured at all.
func Connect(ctx context.Context) (bool, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return false, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return false, fmt.Errorf("ping redis: %w", err)
	}
	Conn = client
	return true, nil
}

func RdxGet(key string) (string, error) {
	if Conn == nil {
		return "", redis.Nil
	}
	return Conn.Get(context.Background(), key).Result()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	if Conn == nil {
		return nil
	}
	return Conn.Set(context.Background(), key, value, ttl).Err()
}

func RdxDel(keys ...string) (int64, error) {
	if Conn == nil {
		return 0, nil
	}
	return Conn.Del(context.Background(), keys...).Result()
}
