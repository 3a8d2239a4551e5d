package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound = errors.New("支払記録が見つかりません")
	ErrNotPending      = errors.New("支払は申請中ではありません")
	ErrNotApproved     = errors.New("支払は承認されていません")
	ErrAlreadyPending  = errors.New("支払は既に申請されています")
	ErrAlreadyApproved = errors.New("支払は既に承認されています")
	ErrInvalidMethod   = errors.New("支払方法の形式が不正です")
	ErrNotEligible     = errors.New("支払対象の実出席がありません")
)
