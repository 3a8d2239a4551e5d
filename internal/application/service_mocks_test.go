package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
	"github.com/tojiinoue/kanjikun/internal/notification"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) GetByPublicID(ctx context.Context, publicID string) (*event.Event, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*event.Event, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCandidateRepository implements event.CandidateRepository
type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) Create(ctx context.Context, tx transaction.Tx, c *event.CandidateDate) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

func (m *MockCandidateRepository) GetByID(ctx context.Context, id string) (*event.CandidateDate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.CandidateDate), args.Error(1)
}

func (m *MockCandidateRepository) ListByEvent(ctx context.Context, eventID string) ([]*event.CandidateDate, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.CandidateDate), args.Error(1)
}

func (m *MockCandidateRepository) Update(ctx context.Context, tx transaction.Tx, c *event.CandidateDate) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

func (m *MockCandidateRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockVoteRepository implements vote.Repository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Create(ctx context.Context, tx transaction.Tx, v *vote.Vote) error {
	args := m.Called(ctx, tx, v)
	return args.Error(0)
}

func (m *MockVoteRepository) GetByID(ctx context.Context, id string) (*vote.Vote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vote.Vote), args.Error(1)
}

func (m *MockVoteRepository) ListByEvent(ctx context.Context, eventID string) ([]*vote.Vote, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vote.Vote), args.Error(1)
}

func (m *MockVoteRepository) Update(ctx context.Context, tx transaction.Tx, v *vote.Vote) error {
	args := m.Called(ctx, tx, v)
	return args.Error(0)
}

func (m *MockVoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoundRepository implements round.Repository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Create(ctx context.Context, tx transaction.Tx, r *round.Round) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id string) (*round.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*round.Round), args.Error(1)
}

func (m *MockRoundRepository) GetPrimaryByEvent(ctx context.Context, eventID string) (*round.Round, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*round.Round), args.Error(1)
}

func (m *MockRoundRepository) ListByEvent(ctx context.Context, eventID string) ([]*round.Round, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*round.Round), args.Error(1)
}

func (m *MockRoundRepository) Update(ctx context.Context, tx transaction.Tx, r *round.Round) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockRoundRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockRoundRepository) DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error {
	args := m.Called(ctx, tx, eventID)
	return args.Error(0)
}

// MockAttendanceRepository implements attendance.Repository
type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) CreateBulk(ctx context.Context, tx transaction.Tx, attendances []*attendance.Attendance) error {
	args := m.Called(ctx, tx, attendances)
	return args.Error(0)
}

func (m *MockAttendanceRepository) GetByID(ctx context.Context, id string) (*attendance.Attendance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]*attendance.Attendance, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListByRound(ctx context.Context, roundID string) ([]*attendance.Attendance, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListActualByRound(ctx context.Context, roundID string) ([]*attendance.Attendance, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListByEventAndName(ctx context.Context, eventID, name string) ([]*attendance.Attendance, error) {
	args := m.Called(ctx, eventID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListActualByEventAndName(ctx context.Context, eventID, name string) ([]*attendance.Attendance, error) {
	args := m.Called(ctx, eventID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) Update(ctx context.Context, tx transaction.Tx, a *attendance.Attendance) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockAttendanceRepository) DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error {
	args := m.Called(ctx, tx, eventID)
	return args.Error(0)
}

func (m *MockAttendanceRepository) DeleteByRound(ctx context.Context, tx transaction.Tx, roundID string) error {
	args := m.Called(ctx, tx, roundID)
	return args.Error(0)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Upsert(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByEvent(ctx context.Context, eventID string) ([]*payment.Payment, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByAttendanceIDs(ctx context.Context, attendanceIDs []string) ([]*payment.Payment, error) {
	args := m.Called(ctx, attendanceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error {
	args := m.Called(ctx, tx, eventID)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteByRound(ctx context.Context, tx transaction.Tx, roundID string) error {
	args := m.Called(ctx, tx, roundID)
	return args.Error(0)
}

// MockSnapshotCache implements SnapshotCache
type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context, publicID string) ([]byte, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSnapshotCache) Set(ctx context.Context, publicID string, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, publicID, data, ttl)
	return args.Error(0)
}

func (m *MockSnapshotCache) Invalidate(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

// MockNotifier implements Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(email notification.Email) {
	m.Called(email)
}

// === Test fixtures ===

func adminActor(ev *event.Event) Actor {
	return Actor{AdminToken: ev.AdminToken}
}

func testEvent(scheduleStatus event.ScheduleStatus) *event.Event {
	ev := event.NewEvent("public-1", "admin-token-1", "owner-1", "新年会")
	ev.ID = "event-1"
	ev.ScheduleStatus = scheduleStatus
	return ev
}

func testRound(id string, order int) *round.Round {
	r := round.NewRound("event-1", order, "")
	r.ID = id
	return r
}

func confirmedRound(id string, order, totalAmount, perPerson int) *round.Round {
	r := testRound(id, order)
	r.AccountingStatus = event.AccountingConfirmed
	r.TotalAmount = &totalAmount
	r.PerPersonAmount = &perPerson
	return r
}
