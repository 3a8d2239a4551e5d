package round

import (
	"fmt"
	"strings"
	"time"

	"github.com/tojiinoue/kanjikun/internal/domain/event"
)

// Round は次会（1次会・2次会など課金単位のセッション）を表す
// order はイベント内で1始まりの連番であり、欠番を許さない
type Round struct {
	ID               string
	EventID          string
	Order            int
	Name             string
	AccountingStatus event.AccountingStatus
	TotalAmount      *int
	PerPersonAmount  *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultName は次会の既定名（"1次会" など）を返す
func DefaultName(order int) string {
	return fmt.Sprintf("%d次会", order)
}

// NewRound は新しい次会を作成する
// 名前が空の場合は既定名を採用する
func NewRound(eventID string, order int, name string) *Round {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = DefaultName(order)
	}
	now := time.Now()
	return &Round{
		EventID:          eventID,
		Order:            order,
		Name:             trimmed,
		AccountingStatus: event.AccountingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsPrimary は1次会（削除不可の基準次会）かを返す
func (r *Round) IsPrimary() bool {
	return r.Order == 1
}

// IsAccountingConfirmed は会計が確定済みかを返す
func (r *Round) IsAccountingConfirmed() bool {
	return r.AccountingStatus == event.AccountingConfirmed
}

// ConfirmAccounting は会計を確定する
func (r *Round) ConfirmAccounting(totalAmount, perPerson int) error {
	if r.AccountingStatus == event.AccountingConfirmed {
		return ErrAccountingAlreadyConfirmed
	}
	r.TotalAmount = &totalAmount
	r.PerPersonAmount = &perPerson
	r.AccountingStatus = event.AccountingConfirmed
	r.UpdatedAt = time.Now()
	return nil
}

// ReverseAccounting は会計確定を取り消す
func (r *Round) ReverseAccounting() error {
	if r.AccountingStatus != event.AccountingConfirmed {
		return ErrAccountingNotConfirmed
	}
	r.TotalAmount = nil
	r.PerPersonAmount = nil
	r.AccountingStatus = event.AccountingPending
	r.UpdatedAt = time.Now()
	return nil
}

// Renumber は削除後の詰め直しで順番を付け直す
// 名前も常に既定名へ戻す
func (r *Round) Renumber(order int) {
	r.Order = order
	r.Name = DefaultName(order)
	r.UpdatedAt = time.Now()
}
