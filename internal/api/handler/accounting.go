package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/domain/round"
)

type AccountingHandler struct {
	service AccountingServiceInterface
}

func NewAccountingHandler(s AccountingServiceInterface) *AccountingHandler {
	return &AccountingHandler{service: s}
}

type AdjustmentRequest struct {
	AttendanceID string `json:"attendanceId" validate:"required"`
	Amount       int    `json:"amount" validate:"min=0"`
}

type ConfirmAccountingRequest struct {
	RoundID     *string             `json:"roundId"`
	TotalAmount int                 `json:"totalAmount" validate:"required,gt=0"`
	Adjustments []AdjustmentRequest `json:"adjustments" validate:"dive"`
}

type ReverseAccountingRequest struct {
	RoundID *string `json:"roundId"`
}

// Confirm は次会の会計を確定し、実出席者ごとの支払記録を作る
func (h *AccountingHandler) Confirm(c echo.Context) error {
	var req ConfirmAccountingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	adjustments := make([]round.Adjustment, len(req.Adjustments))
	for i, a := range req.Adjustments {
		adjustments[i] = round.Adjustment{AttendanceID: a.AttendanceID, Amount: a.Amount}
	}

	r, err := h.service.ConfirmAccounting(
		c.Request().Context(), c.Param("id"), actorFromContext(c), req.RoundID, req.TotalAmount, adjustments)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRoundResponse(r))
}

// Reverse は会計確定を取り消し、支払記録を削除する
func (h *AccountingHandler) Reverse(c echo.Context) error {
	var req ReverseAccountingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}

	r, err := h.service.ReverseAccounting(c.Request().Context(), c.Param("id"), actorFromContext(c), req.RoundID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRoundResponse(r))
}
