package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Name                 string      `json:"name" validate:"required,max=120"`
	Memo                 *string     `json:"memo"`
	OwnerEmail           *string     `json:"ownerEmail" validate:"omitempty,email"`
	ShopName             *string     `json:"shopName"`
	ShopSchedule         *string     `json:"shopSchedule"`
	AreaPrefCode         *string     `json:"areaPrefCode"`
	AreaMunicipalityName *string     `json:"areaMunicipalityName"`
	Candidates           []time.Time `json:"candidates" validate:"required,min=1"`
}

type CandidateResponse struct {
	ID       string    `json:"id"`
	StartsAt time.Time `json:"startsAt"`
}

type CreateEventResponse struct {
	PublicID   string              `json:"publicId"`
	AdminToken string              `json:"adminToken"`
	Name       string              `json:"name"`
	Candidates []CandidateResponse `json:"candidates"`
}

type EventListItemResponse struct {
	PublicID       string    `json:"publicId"`
	Name           string    `json:"name"`
	ScheduleStatus string    `json:"scheduleStatus"`
	VotingLocked   bool      `json:"votingLocked"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toCandidateResponses(candidates []*event.CandidateDate) []CandidateResponse {
	resp := make([]CandidateResponse, len(candidates))
	for i, c := range candidates {
		resp[i] = CandidateResponse{ID: c.ID, StartsAt: c.StartsAt}
	}
	return resp
}

// Create はイベントを作成する
// 幹事用トークンはこのレスポンスでのみ返す
func (h *EventHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ev, candidates, err := h.service.CreateEvent(c.Request().Context(), application.CreateEventInput{
		OwnerUserID:          userID,
		OwnerEmail:           req.OwnerEmail,
		Name:                 req.Name,
		Memo:                 req.Memo,
		ShopName:             req.ShopName,
		ShopSchedule:         req.ShopSchedule,
		AreaPrefCode:         req.AreaPrefCode,
		AreaMunicipalityName: req.AreaMunicipalityName,
		Candidates:           req.Candidates,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, CreateEventResponse{
		PublicID:   ev.PublicID,
		AdminToken: ev.AdminToken,
		Name:       ev.Name,
		Candidates: toCandidateResponses(candidates),
	})
}

// Get は公開スナップショットを返す
func (h *EventHandler) Get(c echo.Context) error {
	snapshot, err := h.service.GetSnapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// ListMine は認証済みユーザーが幹事のイベント一覧を返す
func (h *EventHandler) ListMine(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	events, err := h.service.ListOwnerEvents(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]EventListItemResponse, len(events))
	for i, ev := range events {
		resp[i] = EventListItemResponse{
			PublicID:       ev.PublicID,
			Name:           ev.Name,
			ScheduleStatus: string(ev.ScheduleStatus),
			VotingLocked:   ev.VotingLocked,
			CreatedAt:      ev.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete はイベントと配下の全データを削除する
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteEvent(c.Request().Context(), c.Param("id"), actorFromContext(c)); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type CandidateInput struct {
	ID       *string   `json:"id"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
}

type UpdateCandidatesRequest struct {
	Candidates []CandidateInput `json:"candidates" validate:"required,min=1,dive"`
}

// UpdateCandidates は候補日一覧を置き換える
func (h *EventHandler) UpdateCandidates(c echo.Context) error {
	var req UpdateCandidatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	inputs := make([]application.CandidateInput, len(req.Candidates))
	for i, in := range req.Candidates {
		inputs[i] = application.CandidateInput{ID: in.ID, StartsAt: in.StartsAt}
	}

	candidates, err := h.service.UpdateCandidates(c.Request().Context(), c.Param("id"), actorFromContext(c), inputs)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string][]CandidateResponse{
		"candidates": toCandidateResponses(candidates),
	})
}

type ToggleLockRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

// ToggleLock は投票の受付状態を切り替える
func (h *EventHandler) ToggleLock(c echo.Context) error {
	var req ToggleLockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ev, err := h.service.SetVotingLocked(c.Request().Context(), c.Param("id"), actorFromContext(c), *req.Locked)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"votingLocked": ev.VotingLocked})
}
