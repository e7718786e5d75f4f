package cache

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// Options addresses the Redis-compatible cache server.
type Options struct {
	Host     string
	Port     string
	Password string
}

var client *redis.Client

// SetupCache connects to the cache server. An unreachable server is logged,
// not fatal: callers treat cache misses and errors alike.
func SetupCache(ctx context.Context, opts Options) *redis.Client {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       0,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("Could not connect to cache: %v", err)
	} else {
		log.Infof("Connected to cache: %s", pong)
	}
	return client
}

// Close releases the connection pool.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
