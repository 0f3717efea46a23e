package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions is the connection info for the conversation-state Redis.
type ClientOptions struct {
	Host     string
	Port     string
	Username string
	Password string
	DB       int
	// PingTimeout bounds the startup check; zero means five seconds.
	PingTimeout time.Duration
}

// RedisClient connects and pings. The client is returned only if the ping succeeds.
func RedisClient(opts ClientOptions) (*redis.Client, error) {
	// Only set Username & password if authorization enabled
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s:%s: %w", opts.Host, opts.Port, err)
	}

	log.Printf("✨ Connected to Redis at %s:%s (db %d).", opts.Host, opts.Port, opts.DB)
	return client, nil
}
