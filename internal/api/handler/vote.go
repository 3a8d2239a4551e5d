package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
)

type VoteHandler struct {
	service VoteServiceInterface
}

func NewVoteHandler(s VoteServiceInterface) *VoteHandler {
	return &VoteHandler{service: s}
}

type VoteChoiceRequest struct {
	CandidateDateID string `json:"candidateDateId" validate:"required"`
	Response        string `json:"response" validate:"required,oneof=YES MAYBE NO"`
}

type VoteRequest struct {
	Name    string              `json:"name" validate:"required,max=60"`
	Comment *string             `json:"comment"`
	Choices []VoteChoiceRequest `json:"choices" validate:"required,min=1,dive"`
}

type VoteChoiceResponse struct {
	CandidateDateID string `json:"candidateDateId"`
	Response        string `json:"response"`
}

type VoteResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Comment   *string              `json:"comment"`
	Choices   []VoteChoiceResponse `json:"choices"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func toVoteResponse(v *vote.Vote) VoteResponse {
	choices := make([]VoteChoiceResponse, len(v.Choices))
	for i, ch := range v.Choices {
		choices[i] = VoteChoiceResponse{
			CandidateDateID: ch.CandidateDateID,
			Response:        string(ch.Response),
		}
	}
	return VoteResponse{
		ID: v.ID, Name: v.Name, Comment: v.Comment,
		Choices: choices, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
	}
}

func toVoteInput(req VoteRequest) application.VoteInput {
	choices := make([]application.VoteChoiceInput, len(req.Choices))
	for i, ch := range req.Choices {
		choices[i] = application.VoteChoiceInput{
			CandidateDateID: ch.CandidateDateID,
			Response:        ch.Response,
		}
	}
	return application.VoteInput{Name: req.Name, Comment: req.Comment, Choices: choices}
}

// Create は投票を作成する
func (h *VoteHandler) Create(c echo.Context) error {
	var req VoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	v, err := h.service.CreateVote(c.Request().Context(), c.Param("id"), toVoteInput(req))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toVoteResponse(v))
}

// Update は投票を全量差し替えで更新する
func (h *VoteHandler) Update(c echo.Context) error {
	var req VoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	v, err := h.service.UpdateVote(c.Request().Context(), c.Param("id"), c.Param("voteId"), toVoteInput(req))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toVoteResponse(v))
}

// Delete は投票を削除する
func (h *VoteHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteVote(c.Request().Context(), c.Param("id"), c.Param("voteId")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
