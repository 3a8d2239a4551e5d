package event

import (
	"strings"
	"time"
)

// ScheduleStatus は日程調整の状態を表す
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "PENDING"
	ScheduleConfirmed ScheduleStatus = "CONFIRMED"
)

// AccountingStatus は会計の状態を表す
// イベント全体のロールアップと各次会の両方で使用する
type AccountingStatus string

const (
	AccountingPending   AccountingStatus = "PENDING"
	AccountingConfirmed AccountingStatus = "CONFIRMED"
)

// Event はイベントエンティティを表す
// PublicID が参加者向けの唯一のハンドルとなる（ケイパビリティ方式）
type Event struct {
	ID                       string
	PublicID                 string
	AdminToken               string // サーバー生成の幹事用トークン
	OwnerUserID              string
	OwnerEmail               *string
	Name                     string
	Memo                     *string
	ShopName                 *string
	ShopSchedule             *string
	AreaPrefCode             *string
	AreaMunicipalityName     *string
	VotingLocked             bool
	ScheduleStatus           ScheduleStatus
	ConfirmedCandidateDateID *string
	AccountingStatus         AccountingStatus
	TotalAmount              *int
	PerPersonAmount          *int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// CandidateDate は候補日エンティティを表す
// scheduleStatus = PENDING の間のみ編集可能
type CandidateDate struct {
	ID        string
	EventID   string
	StartsAt  time.Time
	CreatedAt time.Time
}

// NewEvent は新しいイベントを作成する
func NewEvent(publicID, adminToken, ownerUserID, name string) *Event {
	now := time.Now()
	return &Event{
		PublicID:         publicID,
		AdminToken:       adminToken,
		OwnerUserID:      ownerUserID,
		Name:             strings.TrimSpace(name),
		ScheduleStatus:   SchedulePending,
		AccountingStatus: AccountingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	return nil
}

// IsScheduleConfirmed は日程が確定済みかを返す
func (e *Event) IsScheduleConfirmed() bool {
	return e.ScheduleStatus == ScheduleConfirmed
}

// ConfirmSchedule は日程を確定する
func (e *Event) ConfirmSchedule(candidateDateID string, startsAt time.Time) error {
	if e.ScheduleStatus == ScheduleConfirmed {
		return ErrScheduleAlreadyConfirmed
	}
	e.ConfirmedCandidateDateID = &candidateDateID
	e.ScheduleStatus = ScheduleConfirmed
	if e.ShopSchedule == nil {
		formatted := startsAt.Format(time.RFC3339)
		e.ShopSchedule = &formatted
	}
	e.UpdatedAt = time.Now()
	return nil
}

// UnconfirmSchedule は日程確定を取り消す
// 出欠・会計・支払は確定日程が前提のため、呼び出し側で連鎖削除する
func (e *Event) UnconfirmSchedule() error {
	if e.ScheduleStatus != ScheduleConfirmed {
		return ErrScheduleNotConfirmed
	}
	e.ConfirmedCandidateDateID = nil
	e.ScheduleStatus = SchedulePending
	e.AccountingStatus = AccountingPending
	e.TotalAmount = nil
	e.PerPersonAmount = nil
	e.UpdatedAt = time.Now()
	return nil
}

// SetVotingLocked は投票の受付状態を切り替える
func (e *Event) SetVotingLocked(locked bool) {
	e.VotingLocked = locked
	e.UpdatedAt = time.Now()
}

// CanEditCandidates は候補日を編集できる状態かを返す
func (e *Event) CanEditCandidates() bool {
	return e.ScheduleStatus == SchedulePending
}
