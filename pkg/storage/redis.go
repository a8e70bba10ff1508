package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlot は Redis の 1 キーを Slot として扱う実装です。
type RedisSlot struct {
	client redis.Cmdable
	prefix string
	quota  int64
}

// NewRedisClient は接続設定から Redis クライアントを生成します。
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisSlot は client をラップした RedisSlot を返します。prefix はキーの先頭に付与されます。
func NewRedisSlot(client redis.Cmdable, prefix string, quota int64) *RedisSlot {
	return &RedisSlot{client: client, prefix: prefix, quota: quota}
}

func (r *RedisSlot) key(key string) string {
	return r.prefix + key
}

func (r *RedisSlot) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (r *RedisSlot) Write(ctx context.Context, key string, data []byte) error {
	if err := checkQuota(r.quota, data); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), string(data), 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisSlot) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// HealthCheck は Redis への疎通を確認します。
func (r *RedisSlot) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
