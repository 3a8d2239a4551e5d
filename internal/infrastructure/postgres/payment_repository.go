package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

type paymentRow struct {
	ID           string     `db:"id"`
	EventID      string     `db:"event_id"`
	RoundID      string     `db:"round_id"`
	AttendanceID string     `db:"attendance_id"`
	Amount       int        `db:"amount"`
	Method       *string    `db:"method"`
	Status       string     `db:"status"`
	AppliedAt    *time.Time `db:"applied_at"`
	ApprovedAt   *time.Time `db:"approved_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const paymentColumns = `id, event_id, round_id, attendance_id, amount, method, status, applied_at, approved_at, created_at, updated_at`

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Upsert は attendance_id の一意制約を使い、確定取消後の再確定で同じ行を使い回す
func (r *PaymentRepository) Upsert(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	query := `INSERT INTO payments (event_id, round_id, attendance_id, amount, method, status, applied_at, approved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (attendance_id) DO UPDATE
		SET amount = EXCLUDED.amount, method = EXCLUDED.method, status = EXCLUDED.status,
			applied_at = EXCLUDED.applied_at, approved_at = EXCLUDED.approved_at, updated_at = EXCLUDED.updated_at
		RETURNING id`
	if err := UnwrapTx(tx).QueryRowContext(ctx, query,
		p.EventID, p.RoundID, p.AttendanceID, p.Amount, methodString(p.Method), string(p.Status),
		p.AppliedAt, p.ApprovedAt, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("支払作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払取得に失敗: %w", err)
	}
	return toPaymentEntity(&row), nil
}

func (r *PaymentRepository) ListByEvent(ctx context.Context, eventID string) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE event_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("支払一覧取得に失敗: %w", err)
	}
	return toPaymentEntities(rows), nil
}

func (r *PaymentRepository) ListByAttendanceIDs(ctx context.Context, attendanceIDs []string) ([]*payment.Payment, error) {
	if len(attendanceIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+paymentColumns+` FROM payments WHERE attendance_id IN (?)`, attendanceIDs)
	if err != nil {
		return nil, fmt.Errorf("支払取得クエリ作成に失敗: %w", err)
	}
	query = r.db.Rebind(query)
	var rows []paymentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("支払一覧取得に失敗: %w", err)
	}
	return toPaymentEntities(rows), nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	query := `UPDATE payments SET amount = $1, method = $2, status = $3, applied_at = $4, approved_at = $5, updated_at = $6 WHERE id = $7`
	result, err := UnwrapTx(tx).ExecContext(ctx, query,
		p.Amount, methodString(p.Method), string(p.Status), p.AppliedAt, p.ApprovedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("支払更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM payments WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("支払全削除に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) DeleteByRound(ctx context.Context, tx transaction.Tx, roundID string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM payments WHERE round_id = $1`, roundID); err != nil {
		return fmt.Errorf("支払削除に失敗: %w", err)
	}
	return nil
}

func methodString(m *payment.Method) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}

func toPaymentEntities(rows []paymentRow) []*payment.Payment {
	result := make([]*payment.Payment, len(rows))
	for i := range rows {
		result[i] = toPaymentEntity(&rows[i])
	}
	return result
}

func toPaymentEntity(row *paymentRow) *payment.Payment {
	var method *payment.Method
	if row.Method != nil {
		m := payment.Method(*row.Method)
		method = &m
	}
	return &payment.Payment{
		ID:           row.ID,
		EventID:      row.EventID,
		RoundID:      row.RoundID,
		AttendanceID: row.AttendanceID,
		Amount:       row.Amount,
		Method:       method,
		Status:       payment.Status(row.Status),
		AppliedAt:    row.AppliedAt,
		ApprovedAt:   row.ApprovedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

var _ payment.Repository = (*PaymentRepository)(nil)
