package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
)

type voteRow struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	Name      string    `db:"name"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type voteChoiceRow struct {
	ID              string `db:"id"`
	VoteID          string `db:"vote_id"`
	CandidateDateID string `db:"candidate_date_id"`
	Response        string `db:"response"`
}

type VoteRepository struct{ db *sqlx.DB }

func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Create(ctx context.Context, tx transaction.Tx, v *vote.Vote) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO votes (event_id, name, comment, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, v.EventID, v.Name, v.Comment, v.CreatedAt, v.UpdatedAt).Scan(&v.ID); err != nil {
		return fmt.Errorf("投票作成に失敗: %w", err)
	}
	return r.insertChoices(ctx, sqlxTx, v)
}

func (r *VoteRepository) GetByID(ctx context.Context, id string) (*vote.Vote, error) {
	var row voteRow
	query := `SELECT id, event_id, name, comment, created_at, updated_at FROM votes WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vote.ErrVoteNotFound
		}
		return nil, fmt.Errorf("投票取得に失敗: %w", err)
	}
	choices, err := r.getChoices(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVoteEntity(&row, choices), nil
}

func (r *VoteRepository) ListByEvent(ctx context.Context, eventID string) ([]*vote.Vote, error) {
	var rows []voteRow
	query := `SELECT id, event_id, name, comment, created_at, updated_at FROM votes WHERE event_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("投票一覧取得に失敗: %w", err)
	}
	result := make([]*vote.Vote, len(rows))
	for i := range rows {
		choices, err := r.getChoices(ctx, rows[i].ID)
		if err != nil {
			return nil, err
		}
		result[i] = toVoteEntity(&rows[i], choices)
	}
	return result, nil
}

// Update は回答の部分更新を避けるため、全削除してから再作成する
func (r *VoteRepository) Update(ctx context.Context, tx transaction.Tx, v *vote.Vote) error {
	sqlxTx := UnwrapTx(tx)
	result, err := sqlxTx.ExecContext(ctx,
		`UPDATE votes SET name = $1, comment = $2, updated_at = $3 WHERE id = $4`,
		v.Name, v.Comment, v.UpdatedAt, v.ID)
	if err != nil {
		return fmt.Errorf("投票更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return vote.ErrVoteNotFound
	}
	if _, err := sqlxTx.ExecContext(ctx, `DELETE FROM vote_choices WHERE vote_id = $1`, v.ID); err != nil {
		return fmt.Errorf("回答削除に失敗: %w", err)
	}
	return r.insertChoices(ctx, sqlxTx, v)
}

func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("投票削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return vote.ErrVoteNotFound
	}
	return nil
}

func (r *VoteRepository) insertChoices(ctx context.Context, tx *sqlx.Tx, v *vote.Vote) error {
	for i := range v.Choices {
		choice := &v.Choices[i]
		choice.VoteID = v.ID
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO vote_choices (vote_id, candidate_date_id, response) VALUES ($1, $2, $3) RETURNING id`,
			choice.VoteID, choice.CandidateDateID, string(choice.Response),
		).Scan(&choice.ID); err != nil {
			return fmt.Errorf("回答作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *VoteRepository) getChoices(ctx context.Context, voteID string) ([]vote.Choice, error) {
	var rows []voteChoiceRow
	query := `SELECT id, vote_id, candidate_date_id, response FROM vote_choices WHERE vote_id = $1`
	if err := r.db.SelectContext(ctx, &rows, query, voteID); err != nil {
		return nil, fmt.Errorf("回答取得に失敗: %w", err)
	}
	choices := make([]vote.Choice, len(rows))
	for i, row := range rows {
		choices[i] = vote.Choice{
			ID:              row.ID,
			VoteID:          row.VoteID,
			CandidateDateID: row.CandidateDateID,
			Response:        vote.Response(row.Response),
		}
	}
	return choices, nil
}

func toVoteEntity(row *voteRow, choices []vote.Choice) *vote.Vote {
	return &vote.Vote{
		ID:        row.ID,
		EventID:   row.EventID,
		Name:      row.Name,
		Comment:   row.Comment,
		Choices:   choices,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

var _ vote.Repository = (*VoteRepository)(nil)
