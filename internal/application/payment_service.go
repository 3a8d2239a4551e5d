package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	"github.com/tojiinoue/kanjikun/internal/notification"
	"github.com/tojiinoue/kanjikun/internal/pkg/metrics"
)

// PaymentService は支払の申請・承認フローを担うサービス
// 遷移は支払1件ずつではなく、同じ名前を持つ全次会の支払をひとまとめに
// 扱う（2次会まで参加した人の申請・承認は1単位で行う）
type PaymentService struct {
	txManager      transaction.Manager
	eventRepo      event.Repository
	roundRepo      round.Repository
	attendanceRepo attendance.Repository
	paymentRepo    payment.Repository
	cache          SnapshotCache
	notifier       Notifier
	authorizer     Authorizer
	baseURL        string
}

// NewPaymentService は新しいPaymentServiceインスタンスを作成する
func NewPaymentService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	roundRepo round.Repository,
	attendanceRepo attendance.Repository,
	paymentRepo payment.Repository,
	cache SnapshotCache,
	notifier Notifier,
	authorizer Authorizer,
	baseURL string,
) *PaymentService {
	return &PaymentService{
		txManager:      txManager,
		eventRepo:      eventRepo,
		roundRepo:      roundRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		cache:          cache,
		notifier:       notifier,
		authorizer:     authorizer,
		baseURL:        baseURL,
	}
}

// Apply は出席者名に紐づく全支払を申請中にする
// 名前が登場する全次会の会計が確定していることが前提
func (s *PaymentService) Apply(ctx context.Context, publicID, attendeeName, methodStr string) ([]*payment.Payment, error) {
	payments, err := s.apply(ctx, publicID, attendeeName, methodStr)
	recordPaymentTransition("apply", err)
	return payments, err
}

func (s *PaymentService) apply(ctx context.Context, publicID, attendeeName, methodStr string) ([]*payment.Payment, error) {
	method, err := payment.ParseMethod(methodStr)
	if err != nil {
		return nil, err
	}

	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(attendeeName)
	actuals, err := s.attendanceRepo.ListActualByEventAndName(ctx, ev.ID, name)
	if err != nil {
		return nil, err
	}
	if len(actuals) == 0 {
		return nil, payment.ErrNotEligible
	}

	// 名前が実出席している全次会の会計が確定しているか確認する
	roundIDs := make(map[string]bool, len(actuals))
	for _, a := range actuals {
		roundIDs[a.RoundID] = true
	}
	for roundID := range roundIDs {
		r, err := s.roundRepo.GetByID(ctx, roundID)
		if err != nil {
			return nil, err
		}
		if !r.IsAccountingConfirmed() {
			return nil, round.ErrAccountingNotConfirmed
		}
	}

	attendanceIDs := make([]string, 0, len(actuals))
	for _, a := range actuals {
		attendanceIDs = append(attendanceIDs, a.ID)
	}
	payments, err := s.paymentRepo.ListByAttendanceIDs(ctx, attendanceIDs)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, payment.ErrPaymentNotFound
	}

	for _, p := range payments {
		if err := p.Apply(method); err != nil {
			return nil, err
		}
	}

	if err := s.updateAll(ctx, payments); err != nil {
		return nil, err
	}

	s.notifyPaymentApplied(ev, name, payments, method)
	invalidateSnapshot(ctx, s.cache, publicID)
	return payments, nil
}

// Cancel は申請を取り下げて未申請に戻す
func (s *PaymentService) Cancel(ctx context.Context, publicID, attendeeName string) ([]*payment.Payment, error) {
	payments, err := s.cancel(ctx, publicID, attendeeName)
	recordPaymentTransition("cancel", err)
	return payments, err
}

func (s *PaymentService) cancel(ctx context.Context, publicID, attendeeName string) ([]*payment.Payment, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentsByName(ctx, ev.ID, strings.TrimSpace(attendeeName))
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		if err := p.Reset(); err != nil {
			return nil, err
		}
	}

	if err := s.updateAll(ctx, payments); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, publicID)
	return payments, nil
}

// Approve は支払を名前単位でまとめて承認する
// 1件でも申請中でない支払があれば全体を拒否する
func (s *PaymentService) Approve(ctx context.Context, publicID, paymentID string, actor Actor) ([]*payment.Payment, error) {
	payments, err := s.transitionGroup(ctx, publicID, paymentID, actor, func(p *payment.Payment) error {
		return p.Approve()
	})
	recordPaymentTransition("approve", err)
	return payments, err
}

// Reject は支払を名前単位でまとめて未申請に差し戻す
func (s *PaymentService) Reject(ctx context.Context, publicID, paymentID string, actor Actor) ([]*payment.Payment, error) {
	payments, err := s.transitionGroup(ctx, publicID, paymentID, actor, func(p *payment.Payment) error {
		return p.Reset()
	})
	recordPaymentTransition("reject", err)
	return payments, err
}

// Unapprove は承認を名前単位でまとめて取り消し、申請中へ戻す
func (s *PaymentService) Unapprove(ctx context.Context, publicID, paymentID string, actor Actor) ([]*payment.Payment, error) {
	payments, err := s.transitionGroup(ctx, publicID, paymentID, actor, func(p *payment.Payment) error {
		return p.Unapprove()
	})
	recordPaymentTransition("unapprove", err)
	return payments, err
}

// transitionGroup は支払IDから名前グループを解決し、全件に遷移を適用する
func (s *PaymentService) transitionGroup(
	ctx context.Context,
	publicID, paymentID string,
	actor Actor,
	transition func(*payment.Payment) error,
) ([]*payment.Payment, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.EventID != ev.ID {
		return nil, payment.ErrPaymentNotFound
	}

	a, err := s.attendanceRepo.GetByID(ctx, p.AttendanceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentsByName(ctx, ev.ID, a.Name)
	if err != nil {
		return nil, err
	}

	for _, member := range payments {
		if err := transition(member); err != nil {
			return nil, err
		}
	}

	if err := s.updateAll(ctx, payments); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, publicID)
	return payments, nil
}

// paymentsByName は同じ名前の出席に紐づく支払を全次会から集める
func (s *PaymentService) paymentsByName(ctx context.Context, eventID, name string) ([]*payment.Payment, error) {
	rows, err := s.attendanceRepo.ListByEventAndName(ctx, eventID, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, payment.ErrPaymentNotFound
	}

	attendanceIDs := make([]string, 0, len(rows))
	for _, a := range rows {
		attendanceIDs = append(attendanceIDs, a.ID)
	}
	payments, err := s.paymentRepo.ListByAttendanceIDs(ctx, attendanceIDs)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, payment.ErrPaymentNotFound
	}
	return payments, nil
}

// updateAll は遷移後の支払をひとつの作業単位で永続化する
func (s *PaymentService) updateAll(ctx context.Context, payments []*payment.Payment) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	for _, p := range payments {
		if err := s.paymentRepo.Update(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (s *PaymentService) notifyPaymentApplied(ev *event.Event, name string, payments []*payment.Payment, method payment.Method) {
	if s.notifier == nil || ev.OwnerEmail == nil {
		return
	}
	total := 0
	for _, p := range payments {
		total += p.Amount
	}
	s.notifier.Enqueue(notification.PaymentAppliedEmail(s.baseURL, notification.EventSummary{
		Name:       ev.Name,
		PublicID:   ev.PublicID,
		OwnerEmail: *ev.OwnerEmail,
	}, name, total, string(method)))
}

func recordPaymentTransition(transition string, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, payment.ErrNotPending),
		errors.Is(err, payment.ErrNotApproved),
		errors.Is(err, payment.ErrAlreadyPending),
		errors.Is(err, payment.ErrAlreadyApproved),
		errors.Is(err, round.ErrAccountingNotConfirmed):
		result = "conflict"
	default:
		result = "error"
	}
	m.PaymentTransitionsTotal.WithLabelValues(transition, result).Inc()
}
