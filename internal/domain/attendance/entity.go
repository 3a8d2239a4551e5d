package attendance

import (
	"strings"
	"time"
)

// Source は出席情報の由来を表す
type Source string

const (
	// SourceVote は日程確定時に投票から作成されたことを表す
	SourceVote Source = "VOTE"
	// SourceManual は幹事による手入力を表す
	SourceManual Source = "MANUAL"
)

// Attendance は次会ごとの出席者名簿の1行を表す
// 名前は投票への外部キーではなく自由入力の文字列であり、
// 次会をまたぐ対応付けは文字列一致で行う
type Attendance struct {
	ID        string
	EventID   string
	RoundID   string
	Name      string
	IsActual  bool
	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewFromVote は投票由来の出席を作成する
// 日程確定時の取り込みでは実出席として扱う
func NewFromVote(eventID, roundID, name string) *Attendance {
	return newAttendance(eventID, roundID, name, true, SourceVote)
}

// NewManual は手入力の出席を作成する
func NewManual(eventID, roundID, name string, isActual bool) *Attendance {
	return newAttendance(eventID, roundID, name, isActual, SourceManual)
}

func newAttendance(eventID, roundID, name string, isActual bool, source Source) *Attendance {
	now := time.Now()
	return &Attendance{
		EventID:   eventID,
		RoundID:   roundID,
		Name:      strings.TrimSpace(name),
		IsActual:  isActual,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は出席の検証を行う
func (a *Attendance) Validate() error {
	if a.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// SetActual は実出席フラグを切り替える
func (a *Attendance) SetActual(isActual bool) {
	a.IsActual = isActual
	a.UpdatedAt = time.Now()
}
