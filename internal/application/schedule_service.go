package application

import (
	"context"
	"fmt"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
)

// ScheduleService は日程の確定・取消を担うサービス
type ScheduleService struct {
	txManager      transaction.Manager
	eventRepo      event.Repository
	candidateRepo  event.CandidateRepository
	voteRepo       vote.Repository
	roundRepo      round.Repository
	attendanceRepo attendance.Repository
	paymentRepo    payment.Repository
	cache          SnapshotCache
	authorizer     Authorizer
}

// NewScheduleService は新しいScheduleServiceインスタンスを作成する
func NewScheduleService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	candidateRepo event.CandidateRepository,
	voteRepo vote.Repository,
	roundRepo round.Repository,
	attendanceRepo attendance.Repository,
	paymentRepo payment.Repository,
	cache SnapshotCache,
	authorizer Authorizer,
) *ScheduleService {
	return &ScheduleService{
		txManager:      txManager,
		eventRepo:      eventRepo,
		candidateRepo:  candidateRepo,
		voteRepo:       voteRepo,
		roundRepo:      roundRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		cache:          cache,
		authorizer:     authorizer,
	}
}

// Confirm は日程を確定する
// 1次会を作成し、確定した候補日にYES/MAYBEで回答した投票から
// 出席名簿を取り込む。名前の重複排除は行わない
func (s *ScheduleService) Confirm(ctx context.Context, publicID string, actor Actor, candidateDateID string) (*event.Event, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}

	candidate, err := s.candidateRepo.GetByID(ctx, candidateDateID)
	if err != nil {
		return nil, err
	}
	if candidate.EventID != ev.ID {
		return nil, event.ErrCandidateNotFound
	}

	if err := ev.ConfirmSchedule(candidate.ID, candidate.StartsAt); err != nil {
		return nil, err
	}

	votes, err := s.voteRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Update(ctx, tx, ev); err != nil {
		return nil, err
	}

	primary := round.NewRound(ev.ID, 1, "")
	if err := s.roundRepo.Create(ctx, tx, primary); err != nil {
		return nil, err
	}

	var seeded []*attendance.Attendance
	for _, v := range votes {
		for _, choice := range v.Choices {
			if choice.CandidateDateID != candidate.ID || !choice.Response.IsPositive() {
				continue
			}
			seeded = append(seeded, attendance.NewFromVote(ev.ID, primary.ID, v.Name))
		}
	}
	if len(seeded) > 0 {
		if err := s.attendanceRepo.CreateBulk(ctx, tx, seeded); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return ev, nil
}

// Unconfirm は日程確定を取り消す
// 出欠・会計・支払は確定日程に紐づく派生データであり、全て削除する
func (s *ScheduleService) Unconfirm(ctx context.Context, publicID string, actor Actor) (*event.Event, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}

	if err := ev.UnconfirmSchedule(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.paymentRepo.DeleteByEvent(ctx, tx, ev.ID); err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.DeleteByEvent(ctx, tx, ev.ID); err != nil {
		return nil, err
	}
	if err := s.roundRepo.DeleteByEvent(ctx, tx, ev.ID); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, tx, ev); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return ev, nil
}
