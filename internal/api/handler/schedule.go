package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ScheduleHandler struct {
	service ScheduleServiceInterface
}

func NewScheduleHandler(s ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{service: s}
}

type ConfirmScheduleRequest struct {
	CandidateDateID string `json:"candidateDateId" validate:"required"`
}

type ScheduleResponse struct {
	ScheduleStatus           string  `json:"scheduleStatus"`
	ConfirmedCandidateDateID *string `json:"confirmedCandidateDateId"`
}

// Confirm は日程を確定し、投票から1次会の名簿を取り込む
func (h *ScheduleHandler) Confirm(c echo.Context) error {
	var req ConfirmScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ev, err := h.service.Confirm(c.Request().Context(), c.Param("id"), actorFromContext(c), req.CandidateDateID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ScheduleResponse{
		ScheduleStatus:           string(ev.ScheduleStatus),
		ConfirmedCandidateDateID: ev.ConfirmedCandidateDateID,
	})
}

// Unconfirm は日程確定を取り消し、出欠・会計・支払を全て破棄する
func (h *ScheduleHandler) Unconfirm(c echo.Context) error {
	ev, err := h.service.Unconfirm(c.Request().Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ScheduleResponse{
		ScheduleStatus:           string(ev.ScheduleStatus),
		ConfirmedCandidateDateID: ev.ConfirmedCandidateDateID,
	})
}
