package application

import (
	"crypto/subtle"

	"github.com/tojiinoue/kanjikun/internal/domain/event"
)

// Actor はリクエスト元の身元を表す
// UserID は認証済みユーザー、AdminToken はイベント作成時に払い出した
// 幹事用トークンのどちらか（または両方）が設定される
type Actor struct {
	UserID     string
	AdminToken string
}

// Authorizer は幹事専用操作の認可を判断するインターフェース
type Authorizer interface {
	Authorize(ev *event.Event, actor Actor) error
}

// CapabilityAuthorizer はオーナー一致または幹事用トークンで認可する
type CapabilityAuthorizer struct{}

// NewAuthorizer は新しいCapabilityAuthorizerインスタンスを作成する
func NewAuthorizer() *CapabilityAuthorizer {
	return &CapabilityAuthorizer{}
}

// Authorize は幹事専用操作の実行可否を判断する
func (a *CapabilityAuthorizer) Authorize(ev *event.Event, actor Actor) error {
	if actor.UserID != "" && actor.UserID == ev.OwnerUserID {
		return nil
	}
	// トークン比較はタイミング攻撃を避けるため定数時間で行う
	if actor.AdminToken != "" &&
		subtle.ConstantTimeCompare([]byte(actor.AdminToken), []byte(ev.AdminToken)) == 1 {
		return nil
	}
	return event.ErrForbidden
}

var _ Authorizer = (*CapabilityAuthorizer)(nil)
