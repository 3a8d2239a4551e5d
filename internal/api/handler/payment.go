package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/domain/payment"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type ApplyPaymentRequest struct {
	AttendeeName string `json:"attendeeName" validate:"required"`
	Method       string `json:"method" validate:"required,oneof=CASH PAYPAY TRANSFER OTHER"`
}

type CancelPaymentRequest struct {
	AttendeeName string `json:"attendeeName" validate:"required"`
}

type PaymentResponse struct {
	ID           string     `json:"id"`
	RoundID      string     `json:"roundId"`
	AttendanceID string     `json:"attendanceId"`
	Amount       int        `json:"amount"`
	Method       *string    `json:"method"`
	Status       string     `json:"status"`
	AppliedAt    *time.Time `json:"appliedAt"`
	ApprovedAt   *time.Time `json:"approvedAt"`
}

func toPaymentResponses(payments []*payment.Payment) []PaymentResponse {
	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		var method *string
		if p.Method != nil {
			s := string(*p.Method)
			method = &s
		}
		resp[i] = PaymentResponse{
			ID:           p.ID,
			RoundID:      p.RoundID,
			AttendanceID: p.AttendanceID,
			Amount:       p.Amount,
			Method:       method,
			Status:       string(p.Status),
			AppliedAt:    p.AppliedAt,
			ApprovedAt:   p.ApprovedAt,
		}
	}
	return resp
}

// Apply は出席者名に紐づく全支払をまとめて申請する
func (h *PaymentHandler) Apply(c echo.Context) error {
	var req ApplyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payments, err := h.service.Apply(c.Request().Context(), c.Param("id"), req.AttendeeName, req.Method)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// Cancel は申請を取り下げる
func (h *PaymentHandler) Cancel(c echo.Context) error {
	var req CancelPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payments, err := h.service.Cancel(c.Request().Context(), c.Param("id"), req.AttendeeName)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// Approve は支払を名前単位でまとめて承認する
func (h *PaymentHandler) Approve(c echo.Context) error {
	payments, err := h.service.Approve(c.Request().Context(), c.Param("id"), c.Param("paymentId"), actorFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// Reject は支払を名前単位でまとめて未申請に差し戻す
func (h *PaymentHandler) Reject(c echo.Context) error {
	payments, err := h.service.Reject(c.Request().Context(), c.Param("id"), c.Param("paymentId"), actorFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// Unapprove は承認を名前単位でまとめて取り消す
func (h *PaymentHandler) Unapprove(c echo.Context) error {
	payments, err := h.service.Unapprove(c.Request().Context(), c.Param("id"), c.Param("paymentId"), actorFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}
