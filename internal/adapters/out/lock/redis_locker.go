package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by release when the key expired or was taken over.
var ErrLockLost = errors.New("lock no longer owned")

const keyPrefix = "lock:"

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

var _ ports.Locker = (*RedisLocker)(nil)

// RedisLocker takes SET NX PX locks shared by every instance using the same Redis.
type RedisLocker struct {
	client   redis.Cmdable
	newToken func() string
}

func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{client: client, newToken: uuid.NewString}
}

func (l *RedisLocker) TryLock(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, bool, error) {
	if ttl <= 0 {
		return nil, false, fmt.Errorf("lock %s: ttl %s is not positive", key, ttl)
	}

	redisKey := keyPrefix + key
	token := l.newToken()

	acquired, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		deleted, err := l.client.Eval(ctx, releaseScript, []string{redisKey}, token).Int()
		if err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		if deleted == 0 {
			return fmt.Errorf("release lock %s: %w", key, ErrLockLost)
		}
		return nil
	}
	return release, true, nil
}
