package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares the sweep lock between every instance pointed at the
// same Redis. The TTL bounds how long a crashed holder blocks others.
type RedisLocker struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLocker{Client: client, Key: "hotel-ops:status-sweep", TTL: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, l.Key, token, l.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.Client, []string{l.Key}, token).Err(); err != nil && err != redis.Nil {
			log.Printf("⚠️ failed to release sweep lock: %v", err)
		}
	}, nil
}
