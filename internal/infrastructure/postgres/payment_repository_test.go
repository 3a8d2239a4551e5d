package postgres

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tojiinoue/kanjikun/internal/config"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := config.Load()
	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skip("PostgreSQL not available, skipping repository test")
	}
	if err := RunMigrations(db.DB, "../../../migrations"); err != nil {
		db.Close()
		t.Skipf("マイグレーションに失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedAttendance はイベント・次会・出席の最小構成を作り、各IDを返す
func seedAttendance(t *testing.T, db *sqlx.DB) (eventID, roundID, attendanceID string) {
	t.Helper()
	ctx := context.Background()

	err := db.QueryRowxContext(ctx,
		`INSERT INTO events (public_id, admin_token, owner_user_id, name)
		 VALUES (uuid_generate_v4(), 'test-token', 'owner-1', '歓迎会') RETURNING id`).Scan(&eventID)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.ExecContext(context.Background(), `DELETE FROM events WHERE id = $1`, eventID)
	})

	err = db.QueryRowxContext(ctx,
		`INSERT INTO event_rounds (event_id, round_order, name)
		 VALUES ($1, 1, '1次会') RETURNING id`, eventID).Scan(&roundID)
	require.NoError(t, err)

	err = db.QueryRowxContext(ctx,
		`INSERT INTO attendances (event_id, round_id, name, is_actual, source)
		 VALUES ($1, $2, '田中', TRUE, 'VOTE') RETURNING id`, eventID, roundID).Scan(&attendanceID)
	require.NoError(t, err)
	return eventID, roundID, attendanceID
}

func TestPaymentRepository_Upsert_ReusesRowByAttendance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	eventID, roundID, attendanceID := seedAttendance(t, db)

	repo := NewPaymentRepository(db)
	txManager := NewTxManager(db)

	// 初回の会計確定で支払行が作られる
	first := payment.NewPayment(eventID, roundID, attendanceID, 3000)
	tx, err := txManager.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, tx, first))
	require.NoError(t, tx.Commit())
	require.NotEmpty(t, first.ID)

	// 参加者が申請して PENDING まで進める
	applied, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, applied.Apply(payment.MethodPayPay))
	tx, err = txManager.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, tx, applied))
	require.NoError(t, tx.Commit())

	// 再確定では attendance_id の一意制約で同じ行を使い回し、
	// 金額と状態が初期値に上書きされる
	second := payment.NewPayment(eventID, roundID, attendanceID, 4500)
	tx, err = txManager.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, tx, second))
	require.NoError(t, tx.Commit())

	assert.Equal(t, first.ID, second.ID)

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, attendanceID, stored.AttendanceID)
	assert.Equal(t, 4500, stored.Amount)
	assert.Equal(t, payment.StatusUnsubmitted, stored.Status)
	assert.Nil(t, stored.Method)
	assert.Nil(t, stored.AppliedAt)
	assert.Nil(t, stored.ApprovedAt)
}
