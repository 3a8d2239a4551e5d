package payment

import (
	"context"

	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// Repository は支払リポジトリのインターフェース
type Repository interface {
	// Upsert は出席IDをキーに支払を作成または上書きする（トランザクション必須）
	// 確定取消後の再確定では同じ行を再利用する
	Upsert(ctx context.Context, tx transaction.Tx, p *Payment) error

	// GetByID はIDから支払を取得する
	GetByID(ctx context.Context, id string) (*Payment, error)

	// ListByEvent はイベントの支払一覧を取得する
	ListByEvent(ctx context.Context, eventID string) ([]*Payment, error)

	// ListByAttendanceIDs は出席IDの集合に対応する支払を取得する
	ListByAttendanceIDs(ctx context.Context, attendanceIDs []string) ([]*Payment, error)

	// Update は支払を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, p *Payment) error

	// DeleteByEvent はイベントの支払を全削除する（トランザクション必須）
	DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error

	// DeleteByRound は次会の支払を全削除する（トランザクション必須）
	DeleteByRound(ctx context.Context, tx transaction.Tx, roundID string) error
}
