package handler

import (
	"context"

	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, []*event.CandidateDate, error)
	GetSnapshot(ctx context.Context, publicID string) (*application.EventSnapshot, error)
	ListOwnerEvents(ctx context.Context, ownerUserID string) ([]*event.Event, error)
	DeleteEvent(ctx context.Context, publicID string, actor application.Actor) error
	UpdateCandidates(ctx context.Context, publicID string, actor application.Actor, inputs []application.CandidateInput) ([]*event.CandidateDate, error)
	SetVotingLocked(ctx context.Context, publicID string, actor application.Actor, locked bool) (*event.Event, error)
}

// VoteServiceInterface は投票サービスのインターフェース
type VoteServiceInterface interface {
	CreateVote(ctx context.Context, publicID string, input application.VoteInput) (*vote.Vote, error)
	UpdateVote(ctx context.Context, publicID, voteID string, input application.VoteInput) (*vote.Vote, error)
	DeleteVote(ctx context.Context, publicID, voteID string) error
}

// ScheduleServiceInterface は日程サービスのインターフェース
type ScheduleServiceInterface interface {
	Confirm(ctx context.Context, publicID string, actor application.Actor, candidateDateID string) (*event.Event, error)
	Unconfirm(ctx context.Context, publicID string, actor application.Actor) (*event.Event, error)
}

// RoundServiceInterface は次会サービスのインターフェース
type RoundServiceInterface interface {
	AddRound(ctx context.Context, publicID string, actor application.Actor, name string) (*round.Round, error)
	DeleteRound(ctx context.Context, publicID string, actor application.Actor, roundID string) error
}

// AttendanceServiceInterface は出席サービスのインターフェース
type AttendanceServiceInterface interface {
	UpdateAttendance(ctx context.Context, publicID string, actor application.Actor, roundID *string, updates []application.AttendanceUpdate, additions []string) ([]*attendance.Attendance, error)
}

// AccountingServiceInterface は会計サービスのインターフェース
type AccountingServiceInterface interface {
	ConfirmAccounting(ctx context.Context, publicID string, actor application.Actor, roundID *string, totalAmount int, adjustments []round.Adjustment) (*round.Round, error)
	ReverseAccounting(ctx context.Context, publicID string, actor application.Actor, roundID *string) (*round.Round, error)
}

// PaymentServiceInterface は支払サービスのインターフェース
type PaymentServiceInterface interface {
	Apply(ctx context.Context, publicID, attendeeName, method string) ([]*payment.Payment, error)
	Cancel(ctx context.Context, publicID, attendeeName string) ([]*payment.Payment, error)
	Approve(ctx context.Context, publicID, paymentID string, actor application.Actor) ([]*payment.Payment, error)
	Reject(ctx context.Context, publicID, paymentID string, actor application.Actor) ([]*payment.Payment, error)
	Unapprove(ctx context.Context, publicID, paymentID string, actor application.Actor) ([]*payment.Payment, error)
}
