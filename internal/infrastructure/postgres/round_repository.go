package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
)

type roundRow struct {
	ID               string    `db:"id"`
	EventID          string    `db:"event_id"`
	Order            int       `db:"round_order"`
	Name             string    `db:"name"`
	AccountingStatus string    `db:"accounting_status"`
	TotalAmount      *int      `db:"total_amount"`
	PerPersonAmount  *int      `db:"per_person_amount"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

const roundColumns = `id, event_id, round_order, name, accounting_status, total_amount, per_person_amount, created_at, updated_at`

type RoundRepository struct{ db *sqlx.DB }

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(ctx context.Context, tx transaction.Tx, rd *round.Round) error {
	query := `INSERT INTO event_rounds (event_id, round_order, name, accounting_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := UnwrapTx(tx).QueryRowContext(ctx, query,
		rd.EventID, rd.Order, rd.Name, string(rd.AccountingStatus), rd.CreatedAt, rd.UpdatedAt,
	).Scan(&rd.ID); err != nil {
		return fmt.Errorf("次会作成に失敗: %w", err)
	}
	return nil
}

func (r *RoundRepository) GetByID(ctx context.Context, id string) (*round.Round, error) {
	var row roundRow
	query := `SELECT ` + roundColumns + ` FROM event_rounds WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, round.ErrRoundNotFound
		}
		return nil, fmt.Errorf("次会取得に失敗: %w", err)
	}
	return toRoundEntity(&row), nil
}

func (r *RoundRepository) GetPrimaryByEvent(ctx context.Context, eventID string) (*round.Round, error) {
	var row roundRow
	query := `SELECT ` + roundColumns + ` FROM event_rounds WHERE event_id = $1 AND round_order = 1`
	if err := r.db.GetContext(ctx, &row, query, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, round.ErrRoundNotFound
		}
		return nil, fmt.Errorf("1次会取得に失敗: %w", err)
	}
	return toRoundEntity(&row), nil
}

func (r *RoundRepository) ListByEvent(ctx context.Context, eventID string) ([]*round.Round, error) {
	var rows []roundRow
	query := `SELECT ` + roundColumns + ` FROM event_rounds WHERE event_id = $1 ORDER BY round_order ASC`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("次会一覧取得に失敗: %w", err)
	}
	result := make([]*round.Round, len(rows))
	for i := range rows {
		result[i] = toRoundEntity(&rows[i])
	}
	return result, nil
}

func (r *RoundRepository) Update(ctx context.Context, tx transaction.Tx, rd *round.Round) error {
	query := `UPDATE event_rounds SET round_order = $1, name = $2, accounting_status = $3,
		total_amount = $4, per_person_amount = $5, updated_at = $6 WHERE id = $7`
	result, err := UnwrapTx(tx).ExecContext(ctx, query,
		rd.Order, rd.Name, string(rd.AccountingStatus), rd.TotalAmount, rd.PerPersonAmount, rd.UpdatedAt, rd.ID)
	if err != nil {
		return fmt.Errorf("次会更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return round.ErrRoundNotFound
	}
	return nil
}

func (r *RoundRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM event_rounds WHERE id = $1`, id); err != nil {
		return fmt.Errorf("次会削除に失敗: %w", err)
	}
	return nil
}

func (r *RoundRepository) DeleteByEvent(ctx context.Context, tx transaction.Tx, eventID string) error {
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM event_rounds WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("次会全削除に失敗: %w", err)
	}
	return nil
}

func toRoundEntity(row *roundRow) *round.Round {
	return &round.Round{
		ID:               row.ID,
		EventID:          row.EventID,
		Order:            row.Order,
		Name:             row.Name,
		AccountingStatus: event.AccountingStatus(row.AccountingStatus),
		TotalAmount:      row.TotalAmount,
		PerPersonAmount:  row.PerPersonAmount,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

var _ round.Repository = (*RoundRepository)(nil)
