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

type eventRow struct {
	ID                       string     `db:"id"`
	PublicID                 string     `db:"public_id"`
	AdminToken               string     `db:"admin_token"`
	OwnerUserID              string     `db:"owner_user_id"`
	OwnerEmail               *string    `db:"owner_email"`
	Name                     string     `db:"name"`
	Memo                     *string    `db:"memo"`
	ShopName                 *string    `db:"shop_name"`
	ShopSchedule             *string    `db:"shop_schedule"`
	AreaPrefCode             *string    `db:"area_pref_code"`
	AreaMunicipalityName     *string    `db:"area_municipality_name"`
	VotingLocked             bool       `db:"voting_locked"`
	ScheduleStatus           string     `db:"schedule_status"`
	ConfirmedCandidateDateID *string    `db:"confirmed_candidate_date_id"`
	AccountingStatus         string     `db:"accounting_status"`
	TotalAmount              *int       `db:"total_amount"`
	PerPersonAmount          *int       `db:"per_person_amount"`
	CreatedAt                time.Time  `db:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at"`
}

const eventColumns = `id, public_id, admin_token, owner_user_id, owner_email, name, memo,
	shop_name, shop_schedule, area_pref_code, area_municipality_name, voting_locked,
	schedule_status, confirmed_candidate_date_id, accounting_status,
	total_amount, per_person_amount, created_at, updated_at`

type EventRepository struct{ db *sqlx.DB }

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	query := `INSERT INTO events (public_id, admin_token, owner_user_id, owner_email, name, memo,
		shop_name, shop_schedule, area_pref_code, area_municipality_name, voting_locked,
		schedule_status, accounting_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	if err := UnwrapTx(tx).QueryRowContext(ctx, query,
		e.PublicID, e.AdminToken, e.OwnerUserID, e.OwnerEmail, e.Name, e.Memo,
		e.ShopName, e.ShopSchedule, e.AreaPrefCode, e.AreaMunicipalityName, e.VotingLocked,
		string(e.ScheduleStatus), string(e.AccountingStatus), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID); err != nil {
		return fmt.Errorf("イベント作成に失敗: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	var row eventRow
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	return toEventEntity(&row), nil
}

func (r *EventRepository) GetByPublicID(ctx context.Context, publicID string) (*event.Event, error) {
	var row eventRow
	query := `SELECT ` + eventColumns + ` FROM events WHERE public_id = $1`
	if err := r.db.GetContext(ctx, &row, query, publicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	return toEventEntity(&row), nil
}

func (r *EventRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*event.Event, error) {
	var rows []eventRow
	query := `SELECT ` + eventColumns + ` FROM events WHERE owner_user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, ownerUserID); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗: %w", err)
	}
	result := make([]*event.Event, len(rows))
	for i := range rows {
		result[i] = toEventEntity(&rows[i])
	}
	return result, nil
}

func (r *EventRepository) Update(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	query := `UPDATE events SET name = $1, memo = $2, shop_name = $3, shop_schedule = $4,
		area_pref_code = $5, area_municipality_name = $6, voting_locked = $7,
		schedule_status = $8, confirmed_candidate_date_id = $9, accounting_status = $10,
		total_amount = $11, per_person_amount = $12, updated_at = $13
		WHERE id = $14`
	result, err := UnwrapTx(tx).ExecContext(ctx, query,
		e.Name, e.Memo, e.ShopName, e.ShopSchedule,
		e.AreaPrefCode, e.AreaMunicipalityName, e.VotingLocked,
		string(e.ScheduleStatus), e.ConfirmedCandidateDateID, string(e.AccountingStatus),
		e.TotalAmount, e.PerPersonAmount, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	// 子テーブルは外部キーの ON DELETE CASCADE で連鎖削除される
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

func toEventEntity(row *eventRow) *event.Event {
	return &event.Event{
		ID:                       row.ID,
		PublicID:                 row.PublicID,
		AdminToken:               row.AdminToken,
		OwnerUserID:              row.OwnerUserID,
		OwnerEmail:               row.OwnerEmail,
		Name:                     row.Name,
		Memo:                     row.Memo,
		ShopName:                 row.ShopName,
		ShopSchedule:             row.ShopSchedule,
		AreaPrefCode:             row.AreaPrefCode,
		AreaMunicipalityName:     row.AreaMunicipalityName,
		VotingLocked:             row.VotingLocked,
		ScheduleStatus:           event.ScheduleStatus(row.ScheduleStatus),
		ConfirmedCandidateDateID: row.ConfirmedCandidateDateID,
		AccountingStatus:         event.AccountingStatus(row.AccountingStatus),
		TotalAmount:              row.TotalAmount,
		PerPersonAmount:          row.PerPersonAmount,
		CreatedAt:                row.CreatedAt,
		UpdatedAt:                row.UpdatedAt,
	}
}

var _ event.Repository = (*EventRepository)(nil)
