package round

import "errors"

// Round ドメインのエラー定義
var (
	ErrRoundNotFound              = errors.New("次会が見つかりません")
	ErrPrimaryRoundUndeletable    = errors.New("1次会は削除できません")
	ErrAccountingAlreadyConfirmed = errors.New("会計は既に確定されています")
	ErrAccountingNotConfirmed     = errors.New("会計が確定されていません")
	ErrInvalidTotalAmount         = errors.New("合計金額は1円以上である必要があります")
	ErrNoActualAttendance         = errors.New("実出席者がいないため会計を確定できません")
	ErrInvalidAdjustments         = errors.New("個別調整額が不正です")
)
