package config

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil when REDIS_URL is unset. The value may be a
// redis:// URL or a bare host:port.
func ConnectRedis(s Settings) (*redis.Client, error) {
	if s.RedisURL == "" {
		return nil, nil
	}

	var opts *redis.Options
	if strings.Contains(s.RedisURL, "://") {
		parsed, err := redis.ParseURL(s.RedisURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: s.RedisURL, DB: 0}
	}
	if s.RedisPassword != "" {
		opts.Password = s.RedisPassword
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Println("🔧 Redis initialized with address:", opts.Addr)
	return client, nil
}
