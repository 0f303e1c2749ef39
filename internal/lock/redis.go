package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker leases keys in redis so several server and scheduler processes
// serialize on the same customer. A lease expires after ttl if its holder dies.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *logrus.Logger
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, log *logrus.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "ledger:lock:",
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		log:    log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		release, err := l.TryLock(ctx, key)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, ErrNotAcquired) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return l.releaser(redisKey, token), nil
}

// releaser frees the key if it still carries token. A failed release leaves
// the key held until its lease runs out.
func (l *RedisLocker) releaser(redisKey, token string) func() {
	return func() {
		// Fresh context so a cancelled request still frees the key.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.log.WithFields(logrus.Fields{
				"key": redisKey,
				"ttl": l.ttl.String(),
			}).WithError(err).Warn("releasing lock failed, key is held until the lease expires")
		}
	}
}
