package application

import (
	"context"
	"fmt"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// AttendanceService は次会ごとの出席名簿を管理するサービス
type AttendanceService struct {
	txManager      transaction.Manager
	eventRepo      event.Repository
	roundRepo      round.Repository
	attendanceRepo attendance.Repository
	cache          SnapshotCache
	authorizer     Authorizer
}

// NewAttendanceService は新しいAttendanceServiceインスタンスを作成する
func NewAttendanceService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	roundRepo round.Repository,
	attendanceRepo attendance.Repository,
	cache SnapshotCache,
	authorizer Authorizer,
) *AttendanceService {
	return &AttendanceService{
		txManager:      txManager,
		eventRepo:      eventRepo,
		roundRepo:      roundRepo,
		attendanceRepo: attendanceRepo,
		cache:          cache,
		authorizer:     authorizer,
	}
}

// AttendanceUpdate は既存の出席の実出席フラグの変更
type AttendanceUpdate struct {
	AttendanceID string
	IsActual     bool
}

// UpdateAttendance は実出席フラグの変更と出席者の追加をまとめて行う
// roundID が nil の場合は1次会が対象になる
func (s *AttendanceService) UpdateAttendance(
	ctx context.Context,
	publicID string,
	actor Actor,
	roundID *string,
	updates []AttendanceUpdate,
	additions []string,
) ([]*attendance.Attendance, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}

	target, err := resolveRound(ctx, s.roundRepo, ev.ID, roundID)
	if err != nil {
		return nil, err
	}

	added := make([]*attendance.Attendance, 0, len(additions))
	for _, name := range additions {
		a := attendance.NewManual(ev.ID, target.ID, name, true)
		if err := a.Validate(); err != nil {
			return nil, err
		}
		added = append(added, a)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	for _, update := range updates {
		a, err := s.attendanceRepo.GetByID(ctx, update.AttendanceID)
		if err != nil {
			return nil, err
		}
		if a.EventID != ev.ID || a.RoundID != target.ID {
			return nil, attendance.ErrAttendanceNotFound
		}
		a.SetActual(update.IsActual)
		if err := s.attendanceRepo.Update(ctx, tx, a); err != nil {
			return nil, err
		}
	}

	if len(added) > 0 {
		if err := s.attendanceRepo.CreateBulk(ctx, tx, added); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return s.attendanceRepo.ListByRound(ctx, target.ID)
}

// resolveRound は対象の次会を解決する
// roundID 未指定は1次会、指定時はイベント所属の検証を行う
func resolveRound(ctx context.Context, repo round.Repository, eventID string, roundID *string) (*round.Round, error) {
	if roundID == nil || *roundID == "" {
		return repo.GetPrimaryByEvent(ctx, eventID)
	}
	r, err := repo.GetByID(ctx, *roundID)
	if err != nil {
		return nil, err
	}
	if r.EventID != eventID {
		return nil, round.ErrRoundNotFound
	}
	return r, nil
}
