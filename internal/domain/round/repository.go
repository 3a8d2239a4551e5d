package round

import (
	"context"

	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// Repository は次会リポジトリのインターフェース
type Repository interface {
	// Create は新しい次会を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *Round) error

	// GetByID はIDから次会を取得する
	GetByID(ctx context.Context, id string) (*Round, error)

	// GetPrimaryByEvent はイベントの1次会を取得する
	GetPrimaryByEvent(ctx context.Context, eventID string) (*Round, error)

	// ListByEvent はイベントの次会一覧を order の昇順で取得する
	ListByEvent(ctx context.Context, eventID string) ([]*Round, error)

	// Update は次会を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, r *Round) error

	// Delete は次会を削除する（トランザクション必須）
	Delete(ctx context.Context, tx transaction.Tx, id string) error

	// DeleteByEvent はイベントの次会を全削除する（トランザクション必須）
	DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error
}
