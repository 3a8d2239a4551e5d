package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tojiinoue/kanjikun/internal/config"
)

// NewClient はRedisクライアントを作成する
// 分散ロックとスナップショットキャッシュで共有する
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		// 応答しないRedisでロック取得が固まらないようタイムアウトを区切る
		DialTimeout: 3 * time.Second,
		ReadTimeout: 3 * time.Second,
	})
}

// Ping はRedis接続を確認する
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("Redis接続に失敗しました: %w", err)
	}
	return nil
}
