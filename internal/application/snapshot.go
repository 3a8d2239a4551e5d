package application

import (
	"time"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
)

// EventSnapshot は参加者向けの公開イベントスナップショット
// 幹事用トークンやオーナー情報は含めない
type EventSnapshot struct {
	PublicID                 string              `json:"publicId"`
	Name                     string              `json:"name"`
	Memo                     *string             `json:"memo"`
	ShopName                 *string             `json:"shopName"`
	ShopSchedule             *string             `json:"shopSchedule"`
	AreaPrefCode             *string             `json:"areaPrefCode"`
	AreaMunicipalityName     *string             `json:"areaMunicipalityName"`
	VotingLocked             bool                `json:"votingLocked"`
	ScheduleStatus           string              `json:"scheduleStatus"`
	ConfirmedCandidateDateID *string             `json:"confirmedCandidateDateId"`
	AccountingStatus         string              `json:"accountingStatus"`
	TotalAmount              *int                `json:"totalAmount"`
	PerPersonAmount          *int                `json:"perPersonAmount"`
	Candidates               []CandidateSnapshot `json:"candidates"`
	Votes                    []VoteSnapshot      `json:"votes"`
	Rounds                   []RoundSnapshot     `json:"rounds"`
}

// CandidateSnapshot は候補日のスナップショット
type CandidateSnapshot struct {
	ID       string    `json:"id"`
	StartsAt time.Time `json:"startsAt"`
}

// VoteSnapshot は投票のスナップショット
type VoteSnapshot struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Comment *string              `json:"comment"`
	Choices []VoteChoiceSnapshot `json:"choices"`
}

// VoteChoiceSnapshot は候補日ごとの回答のスナップショット
type VoteChoiceSnapshot struct {
	CandidateDateID string `json:"candidateDateId"`
	Response        string `json:"response"`
}

// RoundSnapshot は次会のスナップショット
type RoundSnapshot struct {
	ID               string               `json:"id"`
	Order            int                  `json:"order"`
	Name             string               `json:"name"`
	AccountingStatus string               `json:"accountingStatus"`
	TotalAmount      *int                 `json:"totalAmount"`
	PerPersonAmount  *int                 `json:"perPersonAmount"`
	Attendances      []AttendanceSnapshot `json:"attendances"`
}

// AttendanceSnapshot は出席1件と対応する支払のスナップショット
type AttendanceSnapshot struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	IsActual bool             `json:"isActual"`
	Source   string           `json:"source"`
	Payment  *PaymentSnapshot `json:"payment"`
}

// PaymentSnapshot は支払のスナップショット
type PaymentSnapshot struct {
	ID         string     `json:"id"`
	Amount     int        `json:"amount"`
	Method     *string    `json:"method"`
	Status     string     `json:"status"`
	AppliedAt  *time.Time `json:"appliedAt"`
	ApprovedAt *time.Time `json:"approvedAt"`
}

func buildEventSnapshot(
	ev *event.Event,
	candidates []*event.CandidateDate,
	votes []*vote.Vote,
	rounds []*round.Round,
	attendances []*attendance.Attendance,
	payments []*payment.Payment,
) *EventSnapshot {
	snapshot := &EventSnapshot{
		PublicID:                 ev.PublicID,
		Name:                     ev.Name,
		Memo:                     ev.Memo,
		ShopName:                 ev.ShopName,
		ShopSchedule:             ev.ShopSchedule,
		AreaPrefCode:             ev.AreaPrefCode,
		AreaMunicipalityName:     ev.AreaMunicipalityName,
		VotingLocked:             ev.VotingLocked,
		ScheduleStatus:           string(ev.ScheduleStatus),
		ConfirmedCandidateDateID: ev.ConfirmedCandidateDateID,
		AccountingStatus:         string(ev.AccountingStatus),
		TotalAmount:              ev.TotalAmount,
		PerPersonAmount:          ev.PerPersonAmount,
		Candidates:               make([]CandidateSnapshot, 0, len(candidates)),
		Votes:                    make([]VoteSnapshot, 0, len(votes)),
		Rounds:                   make([]RoundSnapshot, 0, len(rounds)),
	}

	for _, c := range candidates {
		snapshot.Candidates = append(snapshot.Candidates, CandidateSnapshot{
			ID:       c.ID,
			StartsAt: c.StartsAt,
		})
	}

	for _, v := range votes {
		vs := VoteSnapshot{
			ID:      v.ID,
			Name:    v.Name,
			Comment: v.Comment,
			Choices: make([]VoteChoiceSnapshot, 0, len(v.Choices)),
		}
		for _, ch := range v.Choices {
			vs.Choices = append(vs.Choices, VoteChoiceSnapshot{
				CandidateDateID: ch.CandidateDateID,
				Response:        string(ch.Response),
			})
		}
		snapshot.Votes = append(snapshot.Votes, vs)
	}

	paymentByAttendance := make(map[string]*payment.Payment, len(payments))
	for _, p := range payments {
		paymentByAttendance[p.AttendanceID] = p
	}
	attendancesByRound := make(map[string][]*attendance.Attendance, len(rounds))
	for _, a := range attendances {
		attendancesByRound[a.RoundID] = append(attendancesByRound[a.RoundID], a)
	}

	for _, r := range rounds {
		rs := RoundSnapshot{
			ID:               r.ID,
			Order:            r.Order,
			Name:             r.Name,
			AccountingStatus: string(r.AccountingStatus),
			TotalAmount:      r.TotalAmount,
			PerPersonAmount:  r.PerPersonAmount,
			Attendances:      make([]AttendanceSnapshot, 0, len(attendancesByRound[r.ID])),
		}
		for _, a := range attendancesByRound[r.ID] {
			as := AttendanceSnapshot{
				ID:       a.ID,
				Name:     a.Name,
				IsActual: a.IsActual,
				Source:   string(a.Source),
			}
			if p, ok := paymentByAttendance[a.ID]; ok {
				as.Payment = &PaymentSnapshot{
					ID:         p.ID,
					Amount:     p.Amount,
					Method:     methodStringPtr(p.Method),
					Status:     string(p.Status),
					AppliedAt:  p.AppliedAt,
					ApprovedAt: p.ApprovedAt,
				}
			}
			rs.Attendances = append(rs.Attendances, as)
		}
		snapshot.Rounds = append(snapshot.Rounds, rs)
	}

	return snapshot
}

func methodStringPtr(m *payment.Method) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}
