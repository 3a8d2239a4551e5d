package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
)

type accountingDeps struct {
	txManager      *MockTxManager
	tx             *MockTx
	eventRepo      *MockEventRepository
	roundRepo      *MockRoundRepository
	attendanceRepo *MockAttendanceRepository
	paymentRepo    *MockPaymentRepository
	service        *AccountingService
}

func newAccountingDeps() *accountingDeps {
	deps := &accountingDeps{
		txManager:      new(MockTxManager),
		tx:             new(MockTx),
		eventRepo:      new(MockEventRepository),
		roundRepo:      new(MockRoundRepository),
		attendanceRepo: new(MockAttendanceRepository),
		paymentRepo:    new(MockPaymentRepository),
	}
	// Redis未接続の構成ではロックなしで動作する
	deps.service = NewAccountingService(
		deps.txManager, deps.eventRepo, deps.roundRepo,
		deps.attendanceRepo, deps.paymentRepo, nil, nil, NewAuthorizer())
	return deps
}

func actualRows(roundID string, ids ...string) []*attendance.Attendance {
	rows := make([]*attendance.Attendance, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, &attendance.Attendance{
			ID: id, EventID: "event-1", RoundID: roundID, Name: "出席者" + id, IsActual: true,
		})
	}
	return rows
}

func TestAccountingService_ConfirmAccounting_Success(t *testing.T) {
	deps := newAccountingDeps()
	ctx := context.Background()

	ev := testEvent(event.ScheduleConfirmed)
	primary := testRound("round-1", 1)

	deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
	deps.roundRepo.On("GetPrimaryByEvent", ctx, ev.ID).Return(primary, nil)
	deps.attendanceRepo.On("ListActualByRound", ctx, primary.ID).
		Return(actualRows(primary.ID, "att-1", "att-2", "att-3"), nil)
	deps.roundRepo.On("ListByEvent", ctx, ev.ID).Return([]*round.Round{primary}, nil)

	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.roundRepo.On("Update", ctx, deps.tx, primary).Return(nil)

	var upserted []*payment.Payment
	deps.paymentRepo.On("Upsert", ctx, deps.tx, mock.AnythingOfType("*payment.Payment")).
		Run(func(args mock.Arguments) {
			upserted = append(upserted, args.Get(2).(*payment.Payment))
		}).Return(nil)
	deps.eventRepo.On("Update", ctx, deps.tx, ev).Return(nil)

	// 10000円を3人で割ると切り上げで1人3334円
	result, err := deps.service.ConfirmAccounting(ctx, "public-1", adminActor(ev), nil, 10000, nil)

	require.NoError(t, err)
	assert.Equal(t, event.AccountingConfirmed, result.AccountingStatus)
	assert.Equal(t, 10000, *result.TotalAmount)
	assert.Equal(t, 3334, *result.PerPersonAmount)

	require.Len(t, upserted, 3)
	for _, p := range upserted {
		assert.Equal(t, 3334, p.Amount)
		assert.Equal(t, payment.StatusUnsubmitted, p.Status)
		assert.Equal(t, primary.ID, p.RoundID)
	}

	// 次会が1つだけなのでイベント全体にも1人あたり金額が載る
	assert.Equal(t, event.AccountingConfirmed, ev.AccountingStatus)
	assert.Equal(t, 10000, *ev.TotalAmount)
	assert.Equal(t, 3334, *ev.PerPersonAmount)
}

func TestAccountingService_ConfirmAccounting_WithAdjustments(t *testing.T) {
	deps := newAccountingDeps()
	ctx := context.Background()

	ev := testEvent(event.ScheduleConfirmed)
	roundID := "round-2"
	target := testRound(roundID, 2)

	deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
	deps.roundRepo.On("GetByID", ctx, roundID).Return(target, nil)
	deps.attendanceRepo.On("ListActualByRound", ctx, roundID).
		Return(actualRows(roundID, "att-1", "att-2", "att-3"), nil)
	deps.roundRepo.On("ListByEvent", ctx, ev.ID).Return([]*round.Round{testRound("round-1", 1), target}, nil)

	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.roundRepo.On("Update", ctx, deps.tx, target).Return(nil)

	amounts := map[string]int{}
	deps.paymentRepo.On("Upsert", ctx, deps.tx, mock.AnythingOfType("*payment.Payment")).
		Run(func(args mock.Arguments) {
			p := args.Get(2).(*payment.Payment)
			amounts[p.AttendanceID] = p.Amount
		}).Return(nil)
	deps.eventRepo.On("Update", ctx, deps.tx, ev).Return(nil)

	// 飲まない人を1000円に固定し、残り9000円を2人で割る
	adjustments := []round.Adjustment{{AttendanceID: "att-3", Amount: 1000}}
	result, err := deps.service.ConfirmAccounting(ctx, "public-1", adminActor(ev), &roundID, 10000, adjustments)

	require.NoError(t, err)
	assert.Equal(t, 4500, *result.PerPersonAmount)
	assert.Equal(t, map[string]int{"att-1": 4500, "att-2": 4500, "att-3": 1000}, amounts)
}

func TestAccountingService_ConfirmAccounting_Errors(t *testing.T) {
	t.Run("確定済みの二重確定は拒否", func(t *testing.T) {
		deps := newAccountingDeps()
		ctx := context.Background()

		ev := testEvent(event.ScheduleConfirmed)
		primary := confirmedRound("round-1", 1, 9000, 3000)

		deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
		deps.roundRepo.On("GetPrimaryByEvent", ctx, ev.ID).Return(primary, nil)
		deps.attendanceRepo.On("ListActualByRound", ctx, primary.ID).
			Return(actualRows(primary.ID, "att-1"), nil)

		_, err := deps.service.ConfirmAccounting(ctx, "public-1", adminActor(ev), nil, 9000, nil)

		assert.ErrorIs(t, err, round.ErrAccountingAlreadyConfirmed)
		deps.txManager.AssertNotCalled(t, "Begin")
	})

	t.Run("実出席者がいない場合は拒否", func(t *testing.T) {
		deps := newAccountingDeps()
		ctx := context.Background()

		ev := testEvent(event.ScheduleConfirmed)
		primary := testRound("round-1", 1)

		deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
		deps.roundRepo.On("GetPrimaryByEvent", ctx, ev.ID).Return(primary, nil)
		deps.attendanceRepo.On("ListActualByRound", ctx, primary.ID).
			Return([]*attendance.Attendance{}, nil)

		_, err := deps.service.ConfirmAccounting(ctx, "public-1", adminActor(ev), nil, 9000, nil)

		assert.ErrorIs(t, err, round.ErrNoActualAttendance)
	})

	t.Run("合計0円以下は拒否", func(t *testing.T) {
		deps := newAccountingDeps()
		ctx := context.Background()

		ev := testEvent(event.ScheduleConfirmed)
		primary := testRound("round-1", 1)

		deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
		deps.roundRepo.On("GetPrimaryByEvent", ctx, ev.ID).Return(primary, nil)
		deps.attendanceRepo.On("ListActualByRound", ctx, primary.ID).
			Return(actualRows(primary.ID, "att-1"), nil)

		_, err := deps.service.ConfirmAccounting(ctx, "public-1", adminActor(ev), nil, 0, nil)

		assert.ErrorIs(t, err, round.ErrInvalidTotalAmount)
	})

	t.Run("認可されないActorは拒否", func(t *testing.T) {
		deps := newAccountingDeps()
		ctx := context.Background()

		ev := testEvent(event.ScheduleConfirmed)
		deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)

		_, err := deps.service.ConfirmAccounting(ctx, "public-1", Actor{}, nil, 9000, nil)

		assert.ErrorIs(t, err, event.ErrForbidden)
	})
}

func TestAccountingService_ReverseAccounting_Success(t *testing.T) {
	deps := newAccountingDeps()
	ctx := context.Background()

	ev := testEvent(event.ScheduleConfirmed)
	total := 9000
	perPerson := 3000
	ev.AccountingStatus = event.AccountingConfirmed
	ev.TotalAmount = &total
	ev.PerPersonAmount = &perPerson
	primary := confirmedRound("round-1", 1, 9000, 3000)

	deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
	deps.roundRepo.On("GetPrimaryByEvent", ctx, ev.ID).Return(primary, nil)
	deps.roundRepo.On("ListByEvent", ctx, ev.ID).Return([]*round.Round{primary}, nil)

	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	// 支払記録は却下状態に関わらず削除される
	deps.paymentRepo.On("DeleteByRound", ctx, deps.tx, primary.ID).Return(nil)
	deps.roundRepo.On("Update", ctx, deps.tx, primary).Return(nil)
	deps.eventRepo.On("Update", ctx, deps.tx, ev).Return(nil)

	result, err := deps.service.ReverseAccounting(ctx, "public-1", adminActor(ev), nil)

	require.NoError(t, err)
	assert.Equal(t, event.AccountingPending, result.AccountingStatus)
	assert.Nil(t, result.TotalAmount)
	assert.Nil(t, result.PerPersonAmount)

	assert.Equal(t, event.AccountingPending, ev.AccountingStatus)
	assert.Nil(t, ev.TotalAmount)
	assert.Nil(t, ev.PerPersonAmount)

	deps.paymentRepo.AssertExpectations(t)
}

func TestAccountingService_ReverseAccounting_NotConfirmed(t *testing.T) {
	deps := newAccountingDeps()
	ctx := context.Background()

	ev := testEvent(event.ScheduleConfirmed)
	primary := testRound("round-1", 1)

	deps.eventRepo.On("GetByPublicID", ctx, "public-1").Return(ev, nil)
	deps.roundRepo.On("GetPrimaryByEvent", ctx, ev.ID).Return(primary, nil)

	_, err := deps.service.ReverseAccounting(ctx, "public-1", adminActor(ev), nil)

	assert.ErrorIs(t, err, round.ErrAccountingNotConfirmed)
	deps.txManager.AssertNotCalled(t, "Begin")
}
