package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/domain/attendance"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/payment"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
	"github.com/tojiinoue/kanjikun/internal/domain/vote"
)

// actorFromContext はリクエストヘッダーから操作者の身元を取り出す
// X-User-ID は認証基盤が検証済みの前提、X-Admin-Token はイベント作成時に
// 払い出した幹事用トークン
func actorFromContext(c echo.Context) application.Actor {
	return application.Actor{
		UserID:     c.Request().Header.Get("X-User-ID"),
		AdminToken: c.Request().Header.Get("X-Admin-Token"),
	}
}

// toHTTPError はドメインエラーをHTTPステータスへ対応付ける
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, event.ErrCandidateNotFound),
		errors.Is(err, vote.ErrVoteNotFound),
		errors.Is(err, round.ErrRoundNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, payment.ErrPaymentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, event.ErrForbidden),
		errors.Is(err, event.ErrVotingLocked),
		errors.Is(err, payment.ErrNotEligible):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, event.ErrScheduleAlreadyConfirmed),
		errors.Is(err, event.ErrScheduleNotConfirmed),
		errors.Is(err, event.ErrScheduleLocked),
		errors.Is(err, round.ErrPrimaryRoundUndeletable),
		errors.Is(err, round.ErrAccountingAlreadyConfirmed),
		errors.Is(err, round.ErrAccountingNotConfirmed),
		errors.Is(err, payment.ErrNotPending),
		errors.Is(err, payment.ErrNotApproved),
		errors.Is(err, payment.ErrAlreadyPending),
		errors.Is(err, payment.ErrAlreadyApproved):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, event.ErrEventNameRequired),
		errors.Is(err, event.ErrCandidatesRequired),
		errors.Is(err, vote.ErrNameRequired),
		errors.Is(err, vote.ErrChoicesRequired),
		errors.Is(err, vote.ErrInvalidResponse),
		errors.Is(err, attendance.ErrNameRequired),
		errors.Is(err, payment.ErrInvalidMethod),
		errors.Is(err, round.ErrInvalidTotalAmount),
		errors.Is(err, round.ErrNoActualAttendance),
		errors.Is(err, round.ErrInvalidAdjustments):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
