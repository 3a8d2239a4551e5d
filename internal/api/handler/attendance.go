package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
)

type AttendanceHandler struct {
	service AttendanceServiceInterface
}

func NewAttendanceHandler(s AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{service: s}
}

type AttendanceUpdateRequest struct {
	AttendanceID string `json:"attendanceId" validate:"required"`
	IsActual     *bool  `json:"isActual" validate:"required"`
}

type UpdateAttendanceRequest struct {
	RoundID   *string                   `json:"roundId"`
	Updates   []AttendanceUpdateRequest `json:"updates" validate:"dive"`
	Additions []string                  `json:"additions"`
}

type AttendanceResponse struct {
	ID        string    `json:"id"`
	RoundID   string    `json:"roundId"`
	Name      string    `json:"name"`
	IsActual  bool      `json:"isActual"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Update は実出席フラグの変更と出席者の追加をまとめて行う
// roundId 未指定時は1次会が対象
func (h *AttendanceHandler) Update(c echo.Context) error {
	var req UpdateAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updates := make([]application.AttendanceUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = application.AttendanceUpdate{
			AttendanceID: u.AttendanceID,
			IsActual:     *u.IsActual,
		}
	}

	attendances, err := h.service.UpdateAttendance(
		c.Request().Context(), c.Param("id"), actorFromContext(c), req.RoundID, updates, req.Additions)
	if err != nil {
		// 対象次会が解決できない指定は入力不正として扱う
		if errors.Is(err, round.ErrRoundNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return toHTTPError(err)
	}

	resp := make([]AttendanceResponse, len(attendances))
	for i, a := range attendances {
		resp[i] = toAttendanceResponse(a)
	}
	return c.JSON(http.StatusOK, resp)
}

func toAttendanceResponse(a *attendance.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:        a.ID,
		RoundID:   a.RoundID,
		Name:      a.Name,
		IsActual:  a.IsActual,
		Source:    string(a.Source),
		CreatedAt: a.CreatedAt,
	}
}
