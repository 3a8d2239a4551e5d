package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

type attendanceRow struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	RoundID   string    `db:"round_id"`
	Name      string    `db:"name"`
	IsActual  bool      `db:"is_actual"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const attendanceColumns = `id, event_id, round_id, name, is_actual, source, created_at, updated_at`

type AttendanceRepository struct{ db *sqlx.DB }

func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) CreateBulk(ctx context.Context, tx transaction.Tx, attendances []*attendance.Attendance) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO attendances (event_id, round_id, name, is_actual, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	for _, a := range attendances {
		if err := sqlxTx.QueryRowContext(ctx, query,
			a.EventID, a.RoundID, a.Name, a.IsActual, string(a.Source), a.CreatedAt, a.UpdatedAt,
		).Scan(&a.ID); err != nil {
			return fmt.Errorf("出席作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*attendance.Attendance, error) {
	var row attendanceRow
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("出席取得に失敗: %w", err)
	}
	return toAttendanceEntity(&row), nil
}

func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]*attendance.Attendance, error) {
	return r.list(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

func (r *AttendanceRepository) ListByRound(ctx context.Context, roundID string) ([]*attendance.Attendance, error) {
	return r.list(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE round_id = $1 ORDER BY created_at ASC`, roundID)
}

func (r *AttendanceRepository) ListActualByRound(ctx context.Context, roundID string) ([]*attendance.Attendance, error) {
	return r.list(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE round_id = $1 AND is_actual = TRUE ORDER BY created_at ASC`, roundID)
}

func (r *AttendanceRepository) ListByEventAndName(ctx context.Context, eventID, name string) ([]*attendance.Attendance, error) {
	return r.list(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE event_id = $1 AND name = $2 ORDER BY created_at ASC`, eventID, name)
}

func (r *AttendanceRepository) ListActualByEventAndName(ctx context.Context, eventID, name string) ([]*attendance.Attendance, error) {
	return r.list(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE event_id = $1 AND name = $2 AND is_actual = TRUE ORDER BY created_at ASC`, eventID, name)
}

func (r *AttendanceRepository) Update(ctx context.Context, tx transaction.Tx, a *attendance.Attendance) error {
	query := `UPDATE attendances SET name = $1, is_actual = $2, updated_at = $3 WHERE id = $4`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, a.Name, a.IsActual, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("出席更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *AttendanceRepository) DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM attendances WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("出席全削除に失敗: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) DeleteByRound(ctx context.Context, tx transaction.Tx, roundID string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM attendances WHERE round_id = $1`, roundID); err != nil {
		return fmt.Errorf("出席削除に失敗: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) list(ctx context.Context, query string, args ...interface{}) ([]*attendance.Attendance, error) {
	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("出席一覧取得に失敗: %w", err)
	}
	result := make([]*attendance.Attendance, len(rows))
	for i := range rows {
		result[i] = toAttendanceEntity(&rows[i])
	}
	return result, nil
}

func toAttendanceEntity(row *attendanceRow) *attendance.Attendance {
	return &attendance.Attendance{
		ID:        row.ID,
		EventID:   row.EventID,
		RoundID:   row.RoundID,
		Name:      row.Name,
		IsActual:  row.IsActual,
		Source:    attendance.Source(row.Source),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

var _ attendance.Repository = (*AttendanceRepository)(nil)
