package payment

import "time"

// Status は支払の状態を表す
type Status string

const (
	StatusUnsubmitted Status = "UNSUBMITTED"
	StatusPending     Status = "PENDING"
	StatusApproved    Status = "APPROVED"
)

// Method は支払方法を表す
// 宣言的なラベルであり、決済処理は行わない
type Method string

const (
	MethodCash     Method = "CASH"
	MethodPayPay   Method = "PAYPAY"
	MethodTransfer Method = "TRANSFER"
	MethodOther    Method = "OTHER"
)

// ParseMethod は文字列から支払方法を解釈する
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodCash, MethodPayPay, MethodTransfer, MethodOther:
		return Method(s), nil
	default:
		return "", ErrInvalidMethod
	}
}

// Payment は出席1件に対する支払記録を表す
// 金額は会計確定時に固定され、再確定か確定取消でのみ変わる
type Payment struct {
	ID           string
	EventID      string
	RoundID      string
	AttendanceID string
	Amount       int
	Method       *Method
	Status       Status
	AppliedAt    *time.Time
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPayment は会計確定時の支払記録を作成する
func NewPayment(eventID, roundID, attendanceID string, amount int) *Payment {
	now := time.Now()
	return &Payment{
		EventID:      eventID,
		RoundID:      roundID,
		AttendanceID: attendanceID,
		Amount:       amount,
		Status:       StatusUnsubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply は支払を申請中にする
func (p *Payment) Apply(method Method) error {
	if p.Status == StatusApproved {
		return ErrAlreadyApproved
	}
	if p.Status == StatusPending {
		return ErrAlreadyPending
	}
	now := time.Now()
	p.Method = &method
	p.Status = StatusPending
	p.AppliedAt = &now
	p.UpdatedAt = now
	return nil
}

// Reset は支払を未申請に戻す（取下げ・差戻しの両方で使う）
func (p *Payment) Reset() error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusUnsubmitted
	p.Method = nil
	p.AppliedAt = nil
	p.ApprovedAt = nil
	p.UpdatedAt = time.Now()
	return nil
}

// Approve は支払を承認済みにする
func (p *Payment) Approve() error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	now := time.Now()
	p.Status = StatusApproved
	p.ApprovedAt = &now
	p.UpdatedAt = now
	return nil
}

// Unapprove は承認を取り消して申請中へ戻す
func (p *Payment) Unapprove() error {
	if p.Status != StatusApproved {
		return ErrNotApproved
	}
	p.Status = StatusPending
	p.ApprovedAt = nil
	p.UpdatedAt = time.Now()
	return nil
}
