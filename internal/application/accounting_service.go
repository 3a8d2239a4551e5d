package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	redisinfra "github.com/tojiinoue/kanjikun/internal/infrastructure/redis"
	"github.com/tojiinoue/kanjikun/internal/pkg/metrics"
)

// AccountingService は次会ごとの会計確定・取消を担うサービス
type AccountingService struct {
	txManager      transaction.Manager
	eventRepo      event.Repository
	roundRepo      round.Repository
	attendanceRepo attendance.Repository
	paymentRepo    payment.Repository
	lockManager    *redisinfra.LockManager
	cache          SnapshotCache
	authorizer     Authorizer
}

// NewAccountingService は新しいAccountingServiceインスタンスを作成する
func NewAccountingService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	roundRepo round.Repository,
	attendanceRepo attendance.Repository,
	paymentRepo payment.Repository,
	lockManager *redisinfra.LockManager,
	cache SnapshotCache,
	authorizer Authorizer,
) *AccountingService {
	return &AccountingService{
		txManager:      txManager,
		eventRepo:      eventRepo,
		roundRepo:      roundRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		lockManager:    lockManager,
		cache:          cache,
		authorizer:     authorizer,
	}
}

// ConfirmAccounting は次会の会計を確定し、実出席者ごとの支払記録を作る
// 同一次会への二重確定は分散ロックと事前条件の再確認で防ぐ
func (s *AccountingService) ConfirmAccounting(
	ctx context.Context,
	publicID string,
	actor Actor,
	roundID *string,
	totalAmount int,
	adjustments []round.Adjustment,
) (*round.Round, error) {
	rd, err := s.confirmAccounting(ctx, publicID, actor, roundID, totalAmount, adjustments)
	recordAccountingAction("confirm", err)
	return rd, err
}

func (s *AccountingService) confirmAccounting(
	ctx context.Context,
	publicID string,
	actor Actor,
	roundID *string,
	totalAmount int,
	adjustments []round.Adjustment,
) (*round.Round, error) {
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

	// ロック取得後に状態を読み直し、勝者のコミットを確実に観測する
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(
			ctx, accountingLockKey(target.ID), 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, round.ErrAccountingAlreadyConfirmed
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)

		target, err = s.roundRepo.GetByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
	}

	actuals, err := s.attendanceRepo.ListActualByRound(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	actualIDs := make([]string, 0, len(actuals))
	for _, a := range actuals {
		actualIDs = append(actualIDs, a.ID)
	}

	split, err := round.ComputeSplit(totalAmount, actualIDs, adjustments)
	if err != nil {
		return nil, err
	}

	if err := target.ConfirmAccounting(split.TotalAmount, split.PerPerson); err != nil {
		return nil, err
	}

	rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	for i, r := range rounds {
		if r.ID == target.ID {
			rounds[i] = target
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.roundRepo.Update(ctx, tx, target); err != nil {
		return nil, err
	}
	for _, id := range actualIDs {
		p := payment.NewPayment(ev.ID, target.ID, id, split.AmountByAttendance[id])
		if err := s.paymentRepo.Upsert(ctx, tx, p); err != nil {
			return nil, err
		}
	}

	applyAccountingRollup(ev, rounds)
	if err := s.eventRepo.Update(ctx, tx, ev); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return target, nil
}

// ReverseAccounting は会計確定を取り消し、支払記録を削除する
func (s *AccountingService) ReverseAccounting(ctx context.Context, publicID string, actor Actor, roundID *string) (*round.Round, error) {
	rd, err := s.reverseAccounting(ctx, publicID, actor, roundID)
	recordAccountingAction("reverse", err)
	return rd, err
}

func (s *AccountingService) reverseAccounting(ctx context.Context, publicID string, actor Actor, roundID *string) (*round.Round, error) {
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
	if err := target.ReverseAccounting(); err != nil {
		return nil, err
	}

	rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	for i, r := range rounds {
		if r.ID == target.ID {
			rounds[i] = target
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.paymentRepo.DeleteByRound(ctx, tx, target.ID); err != nil {
		return nil, err
	}
	if err := s.roundRepo.Update(ctx, tx, target); err != nil {
		return nil, err
	}

	applyAccountingRollup(ev, rounds)
	if err := s.eventRepo.Update(ctx, tx, ev); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return target, nil
}

func accountingLockKey(roundID string) string {
	return fmt.Sprintf("accounting:%s", roundID)
}

func recordAccountingAction(action string, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, round.ErrAccountingAlreadyConfirmed), errors.Is(err, round.ErrAccountingNotConfirmed):
		result = "conflict"
	case errors.Is(err, round.ErrInvalidTotalAmount), errors.Is(err, round.ErrNoActualAttendance), errors.Is(err, round.ErrInvalidAdjustments):
		result = "invalid"
	default:
		result = "error"
	}
	m.AccountingActionsTotal.WithLabelValues(action, result).Inc()
}
