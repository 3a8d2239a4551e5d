package vote

import (
	"strings"
	"time"
)

// Response は候補日への回答を表す
type Response string

const (
	ResponseYes   Response = "YES"
	ResponseMaybe Response = "MAYBE"
	ResponseNo    Response = "NO"
)

// ParseResponse は文字列から回答を解釈する
func ParseResponse(s string) (Response, error) {
	switch Response(s) {
	case ResponseYes, ResponseMaybe, ResponseNo:
		return Response(s), nil
	default:
		return "", ErrInvalidResponse
	}
}

// IsPositive は出席見込み（YES または MAYBE）かを返す
func (r Response) IsPositive() bool {
	return r == ResponseYes || r == ResponseMaybe
}

// Choice は候補日ごとの回答を表す
type Choice struct {
	ID              string
	VoteID          string
	CandidateDateID string
	Response        Response
}

// Vote は参加者の投票を表す
// 名前は自由入力であり、出欠・支払とは文字列一致で対応付けられる
type Vote struct {
	ID        string
	EventID   string
	Name      string
	Comment   *string
	Choices   []Choice
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewVote は新しい投票を作成する
func NewVote(eventID, name string, comment *string, choices []Choice) *Vote {
	now := time.Now()
	return &Vote{
		EventID:   eventID,
		Name:      strings.TrimSpace(name),
		Comment:   normalizeComment(comment),
		Choices:   choices,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は投票の検証を行う
func (v *Vote) Validate() error {
	if v.Name == "" {
		return ErrNameRequired
	}
	if len(v.Choices) == 0 {
		return ErrChoicesRequired
	}
	return nil
}

// ReplaceChoices は回答を全面的に差し替える
// 部分更新はせず、全削除と再作成をひとつの作業単位で行う前提
func (v *Vote) ReplaceChoices(name string, comment *string, choices []Choice) error {
	v.Name = strings.TrimSpace(name)
	v.Comment = normalizeComment(comment)
	v.Choices = choices
	if err := v.Validate(); err != nil {
		return err
	}
	v.UpdatedAt = time.Now()
	return nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
