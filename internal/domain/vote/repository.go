package vote

import (
	"context"

	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// Repository は投票リポジトリのインターフェース
type Repository interface {
	// Create は投票と回答を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, v *Vote) error

	// GetByID はIDから投票を回答付きで取得する
	GetByID(ctx context.Context, id string) (*Vote, error)

	// ListByEvent はイベントの投票一覧を回答付きで取得する
	ListByEvent(ctx context.Context, eventID string) ([]*Vote, error)

	// Update は投票を更新し、回答を全削除のうえ再作成する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, v *Vote) error

	// Delete は投票と回答を削除する
	Delete(ctx context.Context, id string) error
}
