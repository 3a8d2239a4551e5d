package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// SnapshotTTL は公開イベントスナップショットの保持期間
// 金額や支払状態を含むため長くは持たず、全ての更新操作で明示的に無効化もする
const SnapshotTTL = 30 * time.Second

// SnapshotCache は公開イベントページ向けの集約スナップショットをキャッシュする
type SnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache は新しいSnapshotCacheインスタンスを作成する
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

// Get はスナップショットのJSONをキャッシュから取得する
func (c *SnapshotCache) Get(ctx context.Context, publicID string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(publicID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// Set はスナップショットのJSONをキャッシュに保存する
func (c *SnapshotCache) Set(ctx context.Context, publicID string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(publicID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのスナップショットを無効化する
func (c *SnapshotCache) Invalidate(ctx context.Context, publicID string) error {
	if err := c.client.Del(ctx, c.key(publicID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SnapshotCache) key(publicID string) string {
	return fmt.Sprintf("kanjikun:snapshot:%s", publicID)
}
