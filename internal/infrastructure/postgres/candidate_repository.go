package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

type candidateRow struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	StartsAt  time.Time `db:"starts_at"`
	CreatedAt time.Time `db:"created_at"`
}

type CandidateRepository struct{ db *sqlx.DB }

func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) Create(ctx context.Context, tx transaction.Tx, c *event.CandidateDate) error {
	query := `INSERT INTO candidate_dates (event_id, starts_at, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := UnwrapTx(tx).QueryRowContext(ctx, query, c.EventID, c.StartsAt, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("候補日作成に失敗: %w", err)
	}
	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*event.CandidateDate, error) {
	var row candidateRow
	query := `SELECT id, event_id, starts_at, created_at FROM candidate_dates WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("候補日取得に失敗: %w", err)
	}
	return toCandidateEntity(&row), nil
}

func (r *CandidateRepository) ListByEvent(ctx context.Context, eventID string) ([]*event.CandidateDate, error) {
	var rows []candidateRow
	query := `SELECT id, event_id, starts_at, created_at FROM candidate_dates WHERE event_id = $1 ORDER BY starts_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("候補日一覧取得に失敗: %w", err)
	}
	result := make([]*event.CandidateDate, len(rows))
	for i := range rows {
		result[i] = toCandidateEntity(&rows[i])
	}
	return result, nil
}

func (r *CandidateRepository) Update(ctx context.Context, tx transaction.Tx, c *event.CandidateDate) error {
	result, err := UnwrapTx(tx).ExecContext(ctx, `UPDATE candidate_dates SET starts_at = $1 WHERE id = $2`, c.StartsAt, c.ID)
	if err != nil {
		return fmt.Errorf("候補日更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return event.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM candidate_dates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("候補日削除に失敗: %w", err)
	}
	return nil
}

func toCandidateEntity(row *candidateRow) *event.CandidateDate {
	return &event.CandidateDate{
		ID:        row.ID,
		EventID:   row.EventID,
		StartsAt:  row.StartsAt,
		CreatedAt: row.CreatedAt,
	}
}

var _ event.CandidateRepository = (*CandidateRepository)(nil)
