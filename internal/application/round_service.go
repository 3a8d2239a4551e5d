package application

import (
	"context"
	"fmt"
	"time"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

// RoundService は次会の追加・削除を担うサービス
type RoundService struct {
	txManager      transaction.Manager
	eventRepo      event.Repository
	roundRepo      round.Repository
	attendanceRepo attendance.Repository
	paymentRepo    payment.Repository
	cache          SnapshotCache
	authorizer     Authorizer
}

// NewRoundService は新しいRoundServiceインスタンスを作成する
func NewRoundService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	roundRepo round.Repository,
	attendanceRepo attendance.Repository,
	paymentRepo payment.Repository,
	cache SnapshotCache,
	authorizer Authorizer,
) *RoundService {
	return &RoundService{
		txManager:      txManager,
		eventRepo:      eventRepo,
		roundRepo:      roundRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		cache:          cache,
		authorizer:     authorizer,
	}
}

// AddRound は新しい次会を末尾に追加する
// 1次会の名簿を実出席なしの状態で複製し、幹事が名前を打ち直さずに
// 済むようにする
func (s *RoundService) AddRound(ctx context.Context, publicID string, actor Actor, name string) (*round.Round, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}

	rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	maxOrder := 0
	var primary *round.Round
	for _, r := range rounds {
		if r.Order > maxOrder {
			maxOrder = r.Order
		}
		if r.IsPrimary() {
			primary = r
		}
	}

	newRound := round.NewRound(ev.ID, maxOrder+1, name)

	var roster []*attendance.Attendance
	if primary != nil {
		primaryRoster, err := s.attendanceRepo.ListByRound(ctx, primary.ID)
		if err != nil {
			return nil, err
		}
		roster = primaryRoster
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.roundRepo.Create(ctx, tx, newRound); err != nil {
		return nil, err
	}

	cloned := make([]*attendance.Attendance, 0, len(roster))
	for _, a := range roster {
		cloned = append(cloned, attendance.NewManual(ev.ID, newRound.ID, a.Name, false))
	}
	if len(cloned) > 0 {
		if err := s.attendanceRepo.CreateBulk(ctx, tx, cloned); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return newRound, nil
}

// DeleteRound は次会を削除する
// 残った次会の順番を詰め直し、イベント全体の会計状態を再計算する
func (s *RoundService) DeleteRound(ctx context.Context, publicID string, actor Actor, roundID string) error {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return err
	}

	target, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return err
	}
	if target.EventID != ev.ID {
		return round.ErrRoundNotFound
	}
	if target.IsPrimary() {
		return round.ErrPrimaryRoundUndeletable
	}

	rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.paymentRepo.DeleteByRound(ctx, tx, target.ID); err != nil {
		return err
	}
	if err := s.attendanceRepo.DeleteByRound(ctx, tx, target.ID); err != nil {
		return err
	}
	if err := s.roundRepo.Delete(ctx, tx, target.ID); err != nil {
		return err
	}

	// 残った次会を順番の昇順で詰め直す
	remaining := make([]*round.Round, 0, len(rounds)-1)
	for _, r := range rounds {
		if r.ID == target.ID {
			continue
		}
		remaining = append(remaining, r)
	}
	// 順番が変わらない次会も含め、全ての名前を既定名へ戻す
	for i, r := range remaining {
		r.Renumber(i + 1)
		if err := s.roundRepo.Update(ctx, tx, r); err != nil {
			return err
		}
	}

	applyAccountingRollup(ev, remaining)
	// 削除後の1人あたり金額は引き継がず、次の会計確定で入り直す
	ev.PerPersonAmount = nil
	if err := s.eventRepo.Update(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return nil
}

// applyAccountingRollup はイベント全体の会計状態を次会から再計算する
// 全次会が確定しているときのみ確定扱いとし、合計金額は各次会の総和、
// 1人あたり金額は次会が1つのときだけ意味を持つためその値を引き継ぐ
func applyAccountingRollup(ev *event.Event, rounds []*round.Round) {
	ev.UpdatedAt = time.Now()
	if len(rounds) == 0 {
		ev.AccountingStatus = event.AccountingPending
		ev.TotalAmount = nil
		ev.PerPersonAmount = nil
		return
	}

	total := 0
	for _, r := range rounds {
		if !r.IsAccountingConfirmed() {
			ev.AccountingStatus = event.AccountingPending
			ev.TotalAmount = nil
			ev.PerPersonAmount = nil
			return
		}
		if r.TotalAmount != nil {
			total += *r.TotalAmount
		}
	}

	ev.AccountingStatus = event.AccountingConfirmed
	ev.TotalAmount = &total
	if len(rounds) == 1 {
		ev.PerPersonAmount = rounds[0].PerPersonAmount
	} else {
		ev.PerPersonAmount = nil
	}
}
