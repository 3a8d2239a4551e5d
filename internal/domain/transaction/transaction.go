package transaction

import "context"

// Tx は一連の書き込みをひとまとめにコミットする作業単位を表す
// 次会削除や日程取消のような連鎖更新が部分的に適用されないための抽象化
type Tx interface {
	// Commit は作業単位を確定する
	Commit() error
	// Rollback は作業単位を破棄する
	Rollback() error
}

// Manager は作業単位を管理するインターフェース
type Manager interface {
	// Begin は新しい作業単位を開始する
	Begin(ctx context.Context) (Tx, error)
}
