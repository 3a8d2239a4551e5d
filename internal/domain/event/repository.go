package event

import (
	"context"

	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, e *Event) error

	// GetByID は内部IDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByPublicID は公開IDからイベントを取得する
	GetByPublicID(ctx context.Context, publicID string) (*Event, error)

	// ListByOwner は幹事ユーザーのイベント一覧を取得する
	ListByOwner(ctx context.Context, ownerUserID string) ([]*Event, error)

	// Update はイベントを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, e *Event) error

	// Delete はイベントと配下の全データを削除する
	Delete(ctx context.Context, id string) error
}

// CandidateRepository は候補日リポジトリのインターフェース
type CandidateRepository interface {
	// Create は候補日を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, c *CandidateDate) error

	// GetByID はIDから候補日を取得する
	GetByID(ctx context.Context, id string) (*CandidateDate, error)

	// ListByEvent はイベントの候補日一覧を開始日時の昇順で取得する
	ListByEvent(ctx context.Context, eventID string) ([]*CandidateDate, error)

	// Update は候補日を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, c *CandidateDate) error

	// Delete は候補日を削除する（トランザクション必須）
	Delete(ctx context.Context, tx transaction.Tx, id string) error
}
