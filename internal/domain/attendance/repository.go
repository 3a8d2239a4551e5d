package attendance

import (
	"context"

	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// Repository は出席リポジトリのインターフェース
type Repository interface {
	// CreateBulk は複数の出席をまとめて作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, attendances []*Attendance) error

	// GetByID はIDから出席を取得する
	GetByID(ctx context.Context, id string) (*Attendance, error)

	// ListByEvent はイベントの出席一覧を取得する
	ListByEvent(ctx context.Context, eventID string) ([]*Attendance, error)

	// ListByRound は次会の出席一覧を取得する
	ListByRound(ctx context.Context, roundID string) ([]*Attendance, error)

	// ListActualByRound は次会の実出席一覧を取得する
	ListActualByRound(ctx context.Context, roundID string) ([]*Attendance, error)

	// ListByEventAndName は名前が一致する出席を全次会から取得する
	ListByEventAndName(ctx context.Context, eventID, name string) ([]*Attendance, error)

	// ListActualByEventAndName は名前が一致する実出席を全次会から取得する
	ListActualByEventAndName(ctx context.Context, eventID, name string) ([]*Attendance, error)

	// Update は出席を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, a *Attendance) error

	// DeleteByEvent はイベントの出席を全削除する（トランザクション必須）
	DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error

	// DeleteByRound は次会の出席を全削除する（トランザクション必須）
	DeleteByRound(ctx context.Context, tx transaction.Tx, roundID string) error
}
