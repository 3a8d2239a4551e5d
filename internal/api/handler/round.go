package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/domain/round"
)

type RoundHandler struct {
	service RoundServiceInterface
}

func NewRoundHandler(s RoundServiceInterface) *RoundHandler {
	return &RoundHandler{service: s}
}

type AddRoundRequest struct {
	Name string `json:"name" validate:"max=60"`
}

type RoundResponse struct {
	ID               string `json:"id"`
	Order            int    `json:"order"`
	Name             string `json:"name"`
	AccountingStatus string `json:"accountingStatus"`
	TotalAmount      *int   `json:"totalAmount"`
	PerPersonAmount  *int   `json:"perPersonAmount"`
}

func toRoundResponse(r *round.Round) RoundResponse {
	return RoundResponse{
		ID:               r.ID,
		Order:            r.Order,
		Name:             r.Name,
		AccountingStatus: string(r.AccountingStatus),
		TotalAmount:      r.TotalAmount,
		PerPersonAmount:  r.PerPersonAmount,
	}
}

// Add は次会を末尾に追加し、1次会の名簿を複製する
func (h *RoundHandler) Add(c echo.Context) error {
	var req AddRoundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	r, err := h.service.AddRound(c.Request().Context(), c.Param("id"), actorFromContext(c), req.Name)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRoundResponse(r))
}

// Delete は次会を削除し、残りの順番を詰め直す
func (h *RoundHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteRound(c.Request().Context(), c.Param("id"), actorFromContext(c), c.Param("roundId")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}
