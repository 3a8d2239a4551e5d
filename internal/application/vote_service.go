package application

import (
	"context"
	"fmt"

	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
	"github.com/tojiinoue/kanjikun/internal/notification"
)

// VoteService は参加者の投票を管理するサービス
type VoteService struct {
	txManager     transaction.Manager
	eventRepo     event.Repository
	candidateRepo event.CandidateRepository
	voteRepo      vote.Repository
	cache         SnapshotCache
	notifier      Notifier
	baseURL       string
}

// NewVoteService は新しいVoteServiceインスタンスを作成する
func NewVoteService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	candidateRepo event.CandidateRepository,
	voteRepo vote.Repository,
	cache SnapshotCache,
	notifier Notifier,
	baseURL string,
) *VoteService {
	return &VoteService{
		txManager:     txManager,
		eventRepo:     eventRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
		cache:         cache,
		notifier:      notifier,
		baseURL:       baseURL,
	}
}

// VoteChoiceInput は候補日への回答の入力
type VoteChoiceInput struct {
	CandidateDateID string
	Response        string
}

// VoteInput は投票の入力
type VoteInput struct {
	Name    string
	Comment *string
	Choices []VoteChoiceInput
}

// CreateVote は投票を作成する
// 投票が締め切られている場合は受け付けず、作成後は幹事へ通知する
func (s *VoteService) CreateVote(ctx context.Context, publicID string, input VoteInput) (*vote.Vote, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if ev.VotingLocked {
		return nil, event.ErrVotingLocked
	}

	choices, err := s.buildChoices(ctx, ev.ID, input.Choices)
	if err != nil {
		return nil, err
	}

	v := vote.NewVote(ev.ID, input.Name, input.Comment, choices)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.voteRepo.Create(ctx, tx, v); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.notifyNewVote(ev, v)
	invalidateSnapshot(ctx, s.cache, publicID)
	return v, nil
}

// UpdateVote は投票を更新する
// 回答の部分更新はせず、常に全量を差し替える
func (s *VoteService) UpdateVote(ctx context.Context, publicID, voteID string, input VoteInput) (*vote.Vote, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if ev.VotingLocked {
		return nil, event.ErrVotingLocked
	}

	v, err := s.voteRepo.GetByID(ctx, voteID)
	if err != nil {
		return nil, err
	}
	if v.EventID != ev.ID {
		return nil, vote.ErrVoteNotFound
	}

	choices, err := s.buildChoices(ctx, ev.ID, input.Choices)
	if err != nil {
		return nil, err
	}
	if err := v.ReplaceChoices(input.Name, input.Comment, choices); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.voteRepo.Update(ctx, tx, v); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return v, nil
}

// DeleteVote は投票を削除する
func (s *VoteService) DeleteVote(ctx context.Context, publicID, voteID string) error {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if ev.VotingLocked {
		return event.ErrVotingLocked
	}

	v, err := s.voteRepo.GetByID(ctx, voteID)
	if err != nil {
		return err
	}
	if v.EventID != ev.ID {
		return vote.ErrVoteNotFound
	}

	if err := s.voteRepo.Delete(ctx, voteID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, publicID)
	return nil
}

// buildChoices は回答入力を検証してエンティティへ変換する
// 候補日がこのイベントのものであることを確認する
func (s *VoteService) buildChoices(ctx context.Context, eventID string, inputs []VoteChoiceInput) ([]vote.Choice, error) {
	candidates, err := s.candidateRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	valid := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		valid[c.ID] = true
	}

	choices := make([]vote.Choice, 0, len(inputs))
	for _, in := range inputs {
		if !valid[in.CandidateDateID] {
			return nil, event.ErrCandidateNotFound
		}
		response, err := vote.ParseResponse(in.Response)
		if err != nil {
			return nil, err
		}
		choices = append(choices, vote.Choice{
			CandidateDateID: in.CandidateDateID,
			Response:        response,
		})
	}
	return choices, nil
}

func (s *VoteService) notifyNewVote(ev *event.Event, v *vote.Vote) {
	if s.notifier == nil || ev.OwnerEmail == nil {
		return
	}
	comment := ""
	if v.Comment != nil {
		comment = *v.Comment
	}
	s.notifier.Enqueue(notification.NewVoteEmail(s.baseURL, notification.EventSummary{
		Name:       ev.Name,
		PublicID:   ev.PublicID,
		OwnerEmail: *ev.OwnerEmail,
	}, v.Name, comment))
}
