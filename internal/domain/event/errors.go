package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound            = errors.New("イベントが見つかりません")
	ErrEventNameRequired        = errors.New("イベント名は必須です")
	ErrCandidatesRequired       = errors.New("候補日は1件以上必要です")
	ErrCandidateNotFound        = errors.New("候補日が見つかりません")
	ErrScheduleAlreadyConfirmed = errors.New("日程は既に確定されています")
	ErrScheduleNotConfirmed     = errors.New("日程が確定されていません")
	ErrScheduleLocked           = errors.New("日程確定後は候補日を変更できません")
	ErrVotingLocked             = errors.New("投票は締め切られています")
	ErrForbidden                = errors.New("幹事権限がありません")
)
