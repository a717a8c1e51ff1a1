package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegramschoolbot/internal/domain/timetable"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tsb:pending"

// RedisStore keeps pending prompts in Redis so they survive restarts and are
// shared between bot replicas. Expiry is left to Redis.
type RedisStore struct {
	cli    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(cli *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{cli: cli, ttl: ttl, prefix: defaultKeyPrefix}
}

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return cli, nil
}

func (s *RedisStore) key(chatID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, chatID)
}

func (s *RedisStore) Set(ctx context.Context, chatID int64, category timetable.Category) error {
	if err := s.cli.Set(ctx, s.key(chatID), category.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending prompt: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, chatID int64) (timetable.Category, bool, error) {
	tag, err := s.cli.GetDel(ctx, s.key(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to take pending prompt: %w", err)
	}
	category, err := timetable.ParseCategory(tag)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt pending prompt for chat %d: %w", chatID, err)
	}
	return category, true, nil
}
