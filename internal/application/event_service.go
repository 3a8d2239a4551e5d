package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/transaction"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
	redisinfra "github.com/tojiinoue/kanjikun/internal/infrastructure/redis"
	"github.com/tojiinoue/kanjikun/internal/pkg/logger"
	"github.com/tojiinoue/kanjikun/internal/pkg/token"
)

// EventService はイベントの作成・参照・候補日管理を担うサービス
type EventService struct {
	txManager      transaction.Manager
	eventRepo      event.Repository
	candidateRepo  event.CandidateRepository
	voteRepo       vote.Repository
	roundRepo      round.Repository
	attendanceRepo attendance.Repository
	paymentRepo    payment.Repository
	cache          SnapshotCache
	authorizer     Authorizer
}

// NewEventService は新しいEventServiceインスタンスを作成する
func NewEventService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	candidateRepo event.CandidateRepository,
	voteRepo vote.Repository,
	roundRepo round.Repository,
	attendanceRepo attendance.Repository,
	paymentRepo payment.Repository,
	cache SnapshotCache,
	authorizer Authorizer,
) *EventService {
	return &EventService{
		txManager:      txManager,
		eventRepo:      eventRepo,
		candidateRepo:  candidateRepo,
		voteRepo:       voteRepo,
		roundRepo:      roundRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		cache:          cache,
		authorizer:     authorizer,
	}
}

// CreateEventInput はイベント作成の入力
type CreateEventInput struct {
	OwnerUserID          string
	OwnerEmail           *string
	Name                 string
	Memo                 *string
	ShopName             *string
	ShopSchedule         *string
	AreaPrefCode         *string
	AreaMunicipalityName *string
	Candidates           []time.Time
}

// CreateEvent はイベントと候補日を作成する
// 幹事用トークンはサーバー側で生成し、このレスポンスでのみ返す
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, []*event.CandidateDate, error) {
	if len(input.Candidates) == 0 {
		return nil, nil, event.ErrCandidatesRequired
	}

	adminToken, err := token.NewAdminToken()
	if err != nil {
		return nil, nil, fmt.Errorf("幹事用トークン生成に失敗: %w", err)
	}

	ev := event.NewEvent(uuid.New().String(), adminToken, input.OwnerUserID, input.Name)
	ev.OwnerEmail = input.OwnerEmail
	ev.Memo = input.Memo
	ev.ShopName = input.ShopName
	ev.ShopSchedule = input.ShopSchedule
	ev.AreaPrefCode = input.AreaPrefCode
	ev.AreaMunicipalityName = input.AreaMunicipalityName
	if err := ev.Validate(); err != nil {
		return nil, nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Create(ctx, tx, ev); err != nil {
		return nil, nil, err
	}

	candidates := make([]*event.CandidateDate, 0, len(input.Candidates))
	for _, startsAt := range input.Candidates {
		c := &event.CandidateDate{
			EventID:   ev.ID,
			StartsAt:  startsAt,
			CreatedAt: time.Now(),
		}
		if err := s.candidateRepo.Create(ctx, tx, c); err != nil {
			return nil, nil, err
		}
		candidates = append(candidates, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return ev, candidates, nil
}

// ListOwnerEvents は幹事ユーザーのイベント一覧を返す
func (s *EventService) ListOwnerEvents(ctx context.Context, ownerUserID string) ([]*event.Event, error) {
	return s.eventRepo.ListByOwner(ctx, ownerUserID)
}

// DeleteEvent はイベントと配下の全データを削除する
func (s *EventService) DeleteEvent(ctx context.Context, publicID string, actor Actor) error {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, ev.ID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, publicID)
	return nil
}

// CandidateInput は候補日更新の1要素
// ID が設定されていれば既存の候補日を更新、未設定なら新規作成する
type CandidateInput struct {
	ID       *string
	StartsAt time.Time
}

// UpdateCandidates は候補日一覧を入力の内容に置き換える
// 入力に含まれない既存の候補日は削除される
func (s *EventService) UpdateCandidates(ctx context.Context, publicID string, actor Actor, inputs []CandidateInput) ([]*event.CandidateDate, error) {
	if len(inputs) == 0 {
		return nil, event.ErrCandidatesRequired
	}

	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}
	if !ev.CanEditCandidates() {
		return nil, event.ErrScheduleLocked
	}

	existing, err := s.candidateRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	existingByID := make(map[string]*event.CandidateDate, len(existing))
	for _, c := range existing {
		existingByID[c.ID] = c
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	kept := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.ID != nil {
			c, ok := existingByID[*in.ID]
			if !ok {
				return nil, event.ErrCandidateNotFound
			}
			c.StartsAt = in.StartsAt
			if err := s.candidateRepo.Update(ctx, tx, c); err != nil {
				return nil, err
			}
			kept[c.ID] = true
			continue
		}
		c := &event.CandidateDate{
			EventID:   ev.ID,
			StartsAt:  in.StartsAt,
			CreatedAt: time.Now(),
		}
		if err := s.candidateRepo.Create(ctx, tx, c); err != nil {
			return nil, err
		}
		kept[c.ID] = true
	}

	for _, c := range existing {
		if kept[c.ID] {
			continue
		}
		if err := s.candidateRepo.Delete(ctx, tx, c.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return s.candidateRepo.ListByEvent(ctx, ev.ID)
}

// SetVotingLocked は投票の受付状態を切り替える
func (s *EventService) SetVotingLocked(ctx context.Context, publicID string, actor Actor, locked bool) (*event.Event, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ev, actor); err != nil {
		return nil, err
	}

	ev.SetVotingLocked(locked)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Update(ctx, tx, ev); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	invalidateSnapshot(ctx, s.cache, publicID)
	return ev, nil
}

// GetSnapshot は参加者向けの公開スナップショットを返す
func (s *EventService) GetSnapshot(ctx context.Context, publicID string) (*EventSnapshot, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, publicID); err == nil {
			var snapshot EventSnapshot
			if err := json.Unmarshal(data, &snapshot); err == nil {
				return &snapshot, nil
			}
		} else if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("スナップショットキャッシュの取得に失敗",
				zap.String("public_id", publicID), zap.Error(err))
		}
	}

	snapshot, err := s.buildSnapshot(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			if err := s.cache.Set(ctx, publicID, data, redisinfra.SnapshotTTL); err != nil {
				logger.Warn("スナップショットキャッシュの保存に失敗",
					zap.String("public_id", publicID), zap.Error(err))
			}
		}
	}
	return snapshot, nil
}

func (s *EventService) buildSnapshot(ctx context.Context, publicID string) (*EventSnapshot, error) {
	ev, err := s.eventRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	votes, err := s.voteRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	attendances, err := s.attendanceRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	return buildEventSnapshot(ev, candidates, votes, rounds, attendances, payments), nil
}
