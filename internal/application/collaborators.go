package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tojiinoue/kanjikun/internal/notification"
	"github.com/tojiinoue/kanjikun/internal/pkg/logger"
)

// Notifier は通知メールをキューに積むインターフェース
// 通知はベストエフォートであり、失敗しても業務処理には影響しない
type Notifier interface {
	Enqueue(email notification.Email)
}

// SnapshotCache は公開イベントスナップショットのキャッシュインターフェース
type SnapshotCache interface {
	Get(ctx context.Context, publicID string) ([]byte, error)
	Set(ctx context.Context, publicID string, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, publicID string) error
}

// invalidateSnapshot はスナップショットキャッシュを無効化する
// キャッシュはTTLでも失効するため、失敗はログに留める
func invalidateSnapshot(ctx context.Context, cache SnapshotCache, publicID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, publicID); err != nil {
		logger.Warn("スナップショットキャッシュの無効化に失敗",
			zap.String("public_id", publicID), zap.Error(err))
	}
}
