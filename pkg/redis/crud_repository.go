package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned by Get for a missing or expired key.
var ErrKeyNotFound = errors.New("key does not exist")

type RedisRepositories struct {
	Client *redis.Client
}

type IRedisRepositories interface {
	Set(key string, data []byte, expiredTime time.Duration, ctx context.Context) error
	Get(key string, ctx context.Context) (string, error)
	Del(key string, ctx context.Context) error
	TTL(key string, ctx context.Context) (time.Duration, error)
	StartPipeline(ctx context.Context) Pipeline
}

// Pipeline queues writes and sends them in one MULTI/EXEC round trip.
type Pipeline interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Del(ctx context.Context, keys ...string)
	Execute(ctx context.Context) error
}

func NewRedisRepositories(client *redis.Client) *RedisRepositories {
	log.Println("🚀 Initialized Repository : Redis")
	return &RedisRepositories{
		Client: client,
	}
}

func (r *RedisRepositories) Set(key string, data []byte, expiredTime time.Duration, ctx context.Context) error {
	return r.Client.Set(ctx, key, data, expiredTime).Err()
}

func (r *RedisRepositories) Get(key string, ctx context.Context) (string, error) {
	result, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	} else if err != nil {
		return "", err
	}
	return result, nil
}

func (r *RedisRepositories) Del(key string, ctx context.Context) error {
	return r.Client.Del(ctx, key).Err()
}

func (r *RedisRepositories) TTL(key string, ctx context.Context) (time.Duration, error) {
	duration, err := r.Client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return duration, nil
}

func (r *RedisRepositories) StartPipeline(ctx context.Context) Pipeline {
	return &txPipeline{pipe: r.Client.TxPipeline()}
}

type txPipeline struct {
	pipe redis.Pipeliner
}

func (p *txPipeline) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	p.pipe.Set(ctx, key, value, expiration)
}

func (p *txPipeline) Del(ctx context.Context, keys ...string) {
	p.pipe.Del(ctx, keys...)
}

func (p *txPipeline) Execute(ctx context.Context) error {
	_, err := p.pipe.Exec(ctx)
	return err
}
