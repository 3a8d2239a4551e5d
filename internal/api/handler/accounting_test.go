package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/domain/event"
	"github.com/tojiinoue/kanjikun/internal/domain/round"
)

// MockAccountingService はAccountingServiceInterfaceのモック
type MockAccountingService struct {
	mock.Mock
}

func (m *MockAccountingService) ConfirmAccounting(ctx context.Context, publicID string, actor application.Actor, roundID *string, totalAmount int, adjustments []round.Adjustment) (*round.Round, error) {
	args := m.Called(ctx, publicID, actor, roundID, totalAmount, adjustments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*round.Round), args.Error(1)
}

func (m *MockAccountingService) ReverseAccounting(ctx context.Context, publicID string, actor application.Actor, roundID *string) (*round.Round, error) {
	args := m.Called(ctx, publicID, actor, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*round.Round), args.Error(1)
}

func confirmedTestRound() *round.Round {
	r := round.NewRound("event-1", 1, "")
	r.ID = "round-1"
	total := 10000
	perPerson := 3334
	r.TotalAmount = &total
	r.PerPersonAmount = &perPerson
	r.AccountingStatus = event.AccountingConfirmed
	return r
}

func TestAccountingHandler_Confirm(t *testing.T) {
	e := NewTestEcho()

	t.Run("会計を確定できる", func(t *testing.T) {
		mockService := new(MockAccountingService)
		mockService.On("ConfirmAccounting", mock.Anything, "public-123", mock.Anything,
			(*string)(nil), 10000, []round.Adjustment{{AttendanceID: "att-3", Amount: 1000}}).
			Return(confirmedTestRound(), nil)

		handler := NewAccountingHandler(mockService)

		reqBody := `{"totalAmount": 10000, "adjustments": [{"attendanceId": "att-3", "amount": 1000}]}`
		req := httptest.NewRequest(http.MethodPost, "/accounting", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Admin-Token", "admin-token-abc")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("public-123")

		err := handler.Confirm(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp RoundResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "CONFIRMED", resp.AccountingStatus)
		assert.Equal(t, 3334, *resp.PerPersonAmount)

		mockService.AssertExpectations(t)
	})

	t.Run("合計0円はバリデーションエラー", func(t *testing.T) {
		handler := NewAccountingHandler(new(MockAccountingService))

		reqBody := `{"totalAmount": 0}`
		req := httptest.NewRequest(http.MethodPost, "/accounting", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Confirm(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("二重確定は409", func(t *testing.T) {
		mockService := new(MockAccountingService)
		mockService.On("ConfirmAccounting", mock.Anything, "public-123", mock.Anything,
			(*string)(nil), 10000, []round.Adjustment{}).
			Return(nil, round.ErrAccountingAlreadyConfirmed)

		handler := NewAccountingHandler(mockService)

		reqBody := `{"totalAmount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/accounting", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("public-123")

		err := handler.Confirm(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestAccountingHandler_Reverse(t *testing.T) {
	e := NewTestEcho()

	t.Run("会計確定を取り消せる", func(t *testing.T) {
		mockService := new(MockAccountingService)
		reversed := round.NewRound("event-1", 1, "")
		reversed.ID = "round-1"
		roundID := "round-1"
		mockService.On("ReverseAccounting", mock.Anything, "public-123", mock.Anything, &roundID).
			Return(reversed, nil)

		handler := NewAccountingHandler(mockService)

		reqBody := `{"roundId": "round-1"}`
		req := httptest.NewRequest(http.MethodDelete, "/accounting", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("public-123")

		err := handler.Reverse(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp RoundResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "PENDING", resp.AccountingStatus)
		assert.Nil(t, resp.TotalAmount)
	})

	t.Run("未確定の取消は409", func(t *testing.T) {
		mockService := new(MockAccountingService)
		mockService.On("ReverseAccounting", mock.Anything, "public-123", mock.Anything, (*string)(nil)).
			Return(nil, round.ErrAccountingNotConfirmed)

		handler := NewAccountingHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/accounting", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("public-123")

		err := handler.Reverse(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}
